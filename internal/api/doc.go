// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package api exposes the recommendation engine over HTTP.

Routes are served by chi under /api/v1 (see NewRouter). Every response uses
the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Errors carry {"error": {"code", "message", "details", "request_id"}} with
codes NOT_FOUND, BAD_REQUEST, VALIDATION_ERROR, CONFLICT,
TOO_MANY_REQUESTS, SERVICE_UNAVAILABLE and INTERNAL_ERROR.

# Dependencies

Handlers depend on small interfaces (Recommender, Trainer, Store,
BreakerState) so tests can substitute hand-written fakes. In production
they are *recommend.Engine, *services.RankerService, *database.DB and
*database.ResilientSource.

# Rate Limits

Limits are per client IP via go-chi/httprate, with separate budgets for
reads (configurable), interaction writes, manual training and health
probes. Rejections are counted in api_rate_limit_hits_total by class.
*/
package api
