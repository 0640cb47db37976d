// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

// Package recommend implements the hybrid venue recommender and the social
// compatibility scorer.
//
// # Architecture
//
// A request flows through four stages, leaves first:
//
//   - Profile: the user's full interaction history is folded into weighted
//     per-category engagement (views 0.3, likes 1.0, saves 1.5, visits 2.0)
//   - Features: each venue becomes a five-value vector (rating, proximity,
//     trending, category engagement, capacity)
//   - Scoring: a weighted heuristic plus interest and category boosts,
//     clamped to [0,1], optionally blended with the learned ranker
//   - Ranking: stable descending sort, truncated to the requested limit
//
// People suggestions compare profiles with a weighted blend of interest
// overlap, category overlap and location proximity. Group suggestions use
// preference overlap and group size.
//
// # Learned Ranker
//
// TrainRanker labels interactions (likes, saves, visits and long views are
// positive; very short views are negative), keeps the strongest label per
// user and venue, and fits the ranker subpackage's random forest on the
// resulting feature vectors. The model is published through a
// ranker.Registry; scoring reads it with a single atomic load per request.
// With too few samples training is skipped and the previous model stays.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), db, ranker.NewRegistry(), logger)
//	recs, err := engine.RecommendVenues(ctx, "user_001", 10, true)
//	people, err := engine.RecommendUsers(ctx, "user_001", 5)
//
// # Thread Safety
//
// Profiles are rebuilt from scratch on every call and never cached. All
// entry points are safe for concurrent use; only one training run may be
// active at a time.
package recommend
