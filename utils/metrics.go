package utils

import (
	"expvar"
)

var AnalyzeRequestsTotal = expvar.NewInt("analyze_requests_total")
var AnalyzeSuccessTotal = expvar.NewInt("analyze_success_total")
var AnalyzeRejectedTotal = expvar.NewInt("analyze_rejected_total")
var AnalyzeModelFailures = expvar.NewInt("analyze_model_failures_total")
var AnalyzeMalformedJSON = expvar.NewInt("analyze_malformed_json_total")
var AnalyzeSchemaViolations = expvar.NewInt("analyze_schema_violations_total")
var ArchiveFailures = expvar.NewInt("archive_failures_total")
