package doctor

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// mockCheck is a testify mock of the Check interface, for runner tests.
type mockCheck struct {
	mock.Mock
}

func (m *mockCheck) Name() string {
	return m.Called().String(0)
}

func (m *mockCheck) Category() string {
	return m.Called().String(0)
}

func (m *mockCheck) Run() *CheckResult {
	return m.Called().Get(0).(*CheckResult)
}

func newMockCheck(name string, status Severity) *mockCheck {
	c := new(mockCheck)
	c.On("Run").Return(&CheckResult{Name: name, Category: "test", Status: status})
	return c
}

func TestRunner_AggregatesResults(t *testing.T) {
	checks := []*mockCheck{
		newMockCheck("a", SeverityPass),
		newMockCheck("b", SeverityWarning),
		newMockCheck("c", SeverityError),
		newMockCheck("d", SeverityInfo),
	}

	runner := NewRunner()
	for _, c := range checks {
		runner.AddCheck(c)
	}

	report := runner.Run()

	if len(report.Results) != 4 {
		t.Fatalf("got %d results, want 4", len(report.Results))
	}
	if report.Summary.Passed != 1 || report.Summary.Warnings != 1 ||
		report.Summary.Errors != 1 || report.Summary.Info != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if !report.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if !report.HasWarnings() {
		t.Error("HasWarnings() = false, want true")
	}
	if report.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	// The runner runs every check exactly once per Run call.
	for _, c := range checks {
		c.AssertNumberOfCalls(t, "Run", 1)
	}
}

func TestRunner_EmptyRun(t *testing.T) {
	report := NewRunner().Run()
	if report.HasErrors() || report.HasWarnings() {
		t.Error("empty run should have no errors or warnings")
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityPass, "pass"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
