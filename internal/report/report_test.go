package report_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networktocode/schema-enforcer/internal/report"
	"github.com/networktocode/schema-enforcer/internal/validation"
)

func sampleResults() []validation.Result {
	pass := validation.NewPass("schemas/ntp")
	fail := validation.NewFail("schemas/dns_servers",
		"'10.1.1.300' is not a 'ipv4'", []string{"dns_servers", "0", "address"})
	annotated := validation.Annotate([]validation.Result{pass, fail},
		validation.InstanceTypeFile, "dns.yml", "chi-beijing-rt1")
	return annotated
}

func TestTextReporterFailuresOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := &report.TextReporter{}
	require.NoError(t, tr.Write(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "FAIL | [ERROR] '10.1.1.300' is not a 'ipv4' [FILE] chi-beijing-rt1/dns.yml [PROPERTY] dns_servers:0:address")
	assert.NotContains(t, out, "PASS")
	assert.Contains(t, out, "1 SCHEMA VALIDATION CHECK(S) FAILED")
}

func TestTextReporterShowPass(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := &report.TextReporter{ShowPass: true}
	require.NoError(t, tr.Write(&buf, sampleResults()))

	assert.Contains(t, buf.String(), "PASS | [FILE] chi-beijing-rt1/dns.yml")
}

func TestTextReporterAllPassedBanner(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := &report.TextReporter{}
	require.NoError(t, tr.Write(&buf, []validation.Result{validation.NewPass("schemas/ntp")}))

	assert.Contains(t, buf.String(), "ALL SCHEMA VALIDATION CHECKS PASSED")
}

func TestTextReporterColour(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := &report.TextReporter{UseColour: true}
	require.NoError(t, tr.Write(&buf, sampleResults()))

	assert.Contains(t, buf.String(), "\033[31m")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	jr := &report.JSONReporter{}
	require.NoError(t, jr.Write(&buf, sampleResults()))

	var out struct {
		Stats struct {
			TotalPassed int `json:"totalPassed"`
			TotalFailed int `json:"totalFailed"`
		} `json:"stats"`
		Results []validation.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, 1, out.Stats.TotalPassed)
	assert.Equal(t, 1, out.Stats.TotalFailed)
	// Failures only unless ShowPass is set.
	require.Len(t, out.Results, 1)
	assert.Equal(t, validation.Fail, out.Results[0].Result)
	assert.Equal(t, []string{"dns_servers", "0", "address"}, out.Results[0].AbsolutePath)
}

func TestJSONReporterShowPass(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	jr := &report.JSONReporter{ShowPass: true}
	require.NoError(t, jr.Write(&buf, sampleResults()))

	var out struct {
		Results []validation.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Len(t, out.Results, 2)
}
