package chart

import (
	"os"
	"strings"
	"testing"

	"BrickWatch/internal/model"
	"BrickWatch/internal/renko"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRender_WritesSVG(t *testing.T) {
	tr := renko.NewTracker("TEST", "1m", 20, nil)
	if err := tr.CalibrateFixed(dec("1.00"), dec("100.00"), 940); err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	bars := []model.CandleStick{
		{Timestamp: 1000, Open: dec("100.0"), High: dec("101.5"), Low: dec("99.9"), Close: dec("101.2")},
		{Timestamp: 1060, Open: dec("101.2"), High: dec("103.6"), Low: dec("101.0"), Close: dec("103.4")},
		{Timestamp: 1120, Open: dec("103.4"), High: dec("103.5"), Low: dec("100.1"), Close: dec("100.3")},
	}
	if _, err := tr.Feed(bars); err != nil {
		t.Fatalf("feed: %v", err)
	}

	dir := t.TempDir()
	path, err := Render(tr, dir)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	svg := string(data)
	if !strings.HasPrefix(svg, "<svg") {
		t.Error("expected SVG output")
	}
	if !strings.Contains(svg, "#228b22") {
		t.Error("expected at least one UP brick rectangle")
	}
	if !strings.Contains(path, "TEST-1m-20p-renko.svg") {
		t.Errorf("unexpected chart filename: %s", path)
	}
}

func TestRender_NoBricks(t *testing.T) {
	tr := renko.NewTracker("TEST", "1m", 20, nil)
	if _, err := Render(tr, t.TempDir()); err == nil {
		t.Fatal("expected error when there is nothing to chart")
	}
}
