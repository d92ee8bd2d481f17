// Package domain contains the core domain model for the cooking contest.
//
// This package defines:
//   - Entities: Player, Round, Dish, Rating, FinalizationVote, PlayerStats
//   - Domain Errors: business rule violation errors, including the
//     submission guard rejections (duplicate submission/rating,
//     self-rating, round not open)
//
// Rules for this package:
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Entities validate their own invariants where they can
package domain
