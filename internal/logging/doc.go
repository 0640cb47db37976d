// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

// Package logging provides the process-wide zerolog logger.
//
// JSON output is the default; console output is intended for local
// development. Components never log through the package functions directly
// once started: they receive a zerolog.Logger and derive a child with a
// "component" field.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	engineLog := logging.WithComponent("recommend")
//
// # Request Context
//
// The API middleware stores a request id in the context; Ctx returns a
// logger carrying it so handler logs can be joined with access logs:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Venue recommendation failed")
//
// # Supervisor Bridge
//
// NewSlogLogger returns a *slog.Logger backed by zerolog for sutureslog,
// which only accepts slog.
//
// # Environment Variables
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include file:line (default: false)
package logging
