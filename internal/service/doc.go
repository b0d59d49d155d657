// Package service contains the application-specific use cases of IntelliCard.
// It orchestrates domain objects and the persistence interfaces defined in
// internal/store to fulfil each operation exposed by the API.
//
// Every operation receives the authenticated actor's ID explicitly and loads
// fresh collection state before evaluating the access policy; nothing in
// this package caches authorization decisions.
//
// Key components:
//
// 1. Collection and card management:
//   - CollectionService creates, lists, updates and deletes card sets
//   - CardService manages the cards of a collection and joins them with the
//     actor's progress
//
// 2. Study:
//   - StudyService applies review outcomes through the scheduling engine
//     under a row lock, and answers due-card and overview queries
//
// 3. Sharing:
//   - AccessRequestService runs the request, approve and reject workflow for
//     private collections
//
// 4. Generation:
//   - GenerationService turns an uploaded document into cards through a
//     generation.Generator, admitting only pairs that pass the content rules
//
// Services depend on store interfaces and a *sql.DB for transaction
// boundaries, never on a concrete store implementation.
package service
