package render

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marek-kar/telltale/pkg/diagnose"
	"github.com/marek-kar/telltale/pkg/model"
)

var update = flag.Bool("update", false, "update golden files")

func selfCheckReport() model.DiagnosticReport {
	return model.DiagnosticReport{
		IsValid:           true,
		VehicleState:      model.StateSelfCheck,
		VehicleStateLabel: "自检中",
		FaultNames:        "发动机系统故障、制动系统警告、胎压监测异常",
		SystemCategory:    "多系统自检",
		Severity:          model.SeverityNotice,
		SeverityLabel:     "提示",
		TechnicalAnalysis: "系统正在进行仪表盘自检，检测到发动机故障灯（黄色）、制动系统警告灯（红色）、胎压监测警告灯（黄色）等3个指示灯同时点亮。这是车辆通电后的正常自检程序，启动后将自动熄灭。",
		DrivingSuggestion: "这是正常的自检程序，无需处理，发动机启动后指示灯将自动熄灭。",
		ConfidenceScore:   "95%",
	}
}

func staticFaultReport() model.DiagnosticReport {
	return model.DiagnosticReport{
		IsValid:           true,
		VehicleState:      model.StateStaticFault,
		VehicleStateLabel: "静态故障提示",
		FaultNames:        "胎压监测异常",
		SystemCategory:    "轮胎系统",
		Severity:          model.SeverityWarning,
		SeverityLabel:     "警告",
		TechnicalAnalysis: "车辆处于通电未启动状态，检测到胎压监测警告灯（黄色）亮起。这提示轮胎气压可能低于标准值。",
		DrivingSuggestion: "建议启动前检查四轮胎压并充气至标准值，确认正常后再行驶。",
		ConfidenceScore:   "95%",
	}
}

func checkGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	goldenPath := filepath.Join("testdata", name)

	if *update {
		if err := os.MkdirAll("testdata", 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(goldenPath, got, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	golden, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("read golden: %v (run with -update to create)", err)
	}

	if !bytes.Equal(got, golden) {
		t.Errorf("output mismatch.\n--- got ---\n%s\n--- want ---\n%s", string(got), string(golden))
	}
}

func TestJSONRendererSingle(t *testing.T) {
	var buf bytes.Buffer
	if err := New(FormatJSON).Render(&buf, []diagnose.Result{{Source: "dash.jpg", Report: selfCheckReport()}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	checkGolden(t, "self_check.json.golden", buf.Bytes())
}

func TestJSONRendererBatch(t *testing.T) {
	results := []diagnose.Result{
		{Source: "a.jpg", Report: staticFaultReport()},
		{Source: "b.jpg", Report: model.InvalidReport()},
	}
	var buf bytes.Buffer
	if err := New(FormatJSON).Render(&buf, results); err != nil {
		t.Fatalf("render: %v", err)
	}
	checkGolden(t, "batch.json.golden", buf.Bytes())
}

func TestJSONRendererInvalid(t *testing.T) {
	var buf bytes.Buffer
	if err := New(FormatJSON).Render(&buf, []diagnose.Result{{Report: model.InvalidReport()}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := buf.String(), "{\n  \"is_valid\": false\n}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTableRenderer(t *testing.T) {
	results := []diagnose.Result{
		{Source: "a.jpg", Report: staticFaultReport()},
		{Source: "b.jpg", Report: model.InvalidReport()},
	}
	var buf bytes.Buffer
	if err := New(FormatTable).Render(&buf, results); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "SOURCE") || !strings.Contains(lines[0], "CONFIDENCE") {
		t.Errorf("unexpected header %q", lines[0])
	}
	for _, want := range []string{
		"STATIC_FAULT",
		"WARNING",
		"轮胎系统",
		"INVALID",
		"--- a.jpg ---",
		"State: 静态故障提示 (警告)",
		"Faults: 胎压监测异常",
		"Suggestion: 建议启动前检查四轮胎压并充气至标准值，确认正常后再行驶。",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "--- b.jpg ---") {
		t.Errorf("invalid result should have no detail block:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "table"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}
