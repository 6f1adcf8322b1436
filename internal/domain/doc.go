// Package domain models NDVI vegetation-health data and drought risk for the
// Turkana County rangeland monitoring service.
//
// # Data Source
//
// The historical series comes from biweekly MODIS NDVI composites aggregated
// over the county, exported as a CSV with start_date (DD/MM/YYYY) and
// mean_ndvi columns. NDVI is a unitless vegetation index in [-1, 1]; values
// above ~0.4 indicate healthy pasture, values below ~0.2 indicate bare or
// severely stressed ground. The series is loaded once at process start and is
// never mutated afterwards.
//
// # Cadence
//
// Every sample covers one 14-day compositing period, so the series advances in
// fixed biweekly steps. Forecast horizons are expressed in weeks and must be
// even: a horizon of N weeks produces N/2 forecast points, dated at the next
// N/2 biweekly steps after the last historical date.
//
// # Severity classification
//
// Drought severity is derived from the projected change rate between the last
// historical NDVI value and the final forecast mean:
//
//	change_rate = (forecast_end_mean - last_historical) / last_historical * 100
//
// The four-level scale maps the change rate through an ordered table of
// half-open [lower, upper) bands that partition the real line:
//
//	Emergency: (-inf, -35)   critical decline, immediate action
//	Alarm:     [-35, -20)    strong decline, plan migration
//	Alert:     [-20, -5)     early decline, monitor closely
//	Normal:    [-5, +inf)    stable or improving
//
// Each level carries a fixed display color consumed by the dashboard
// (green, yellow, orange, red).
//
// # ID Generation
//
// Alert IDs are deterministic SHA-256 hashes of level|end_date|change_rate.
// Republishing the same assessment produces the same ID, so downstream
// consumers can deduplicate alerts without coordination. See [PredictionResult.AlertID].
package domain
