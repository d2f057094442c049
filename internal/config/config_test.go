package config

import "testing"

func TestParseMinimalArgs(t *testing.T) {
	cfg, err := Parse([]string{"-a", "srcip,dstip", "-O", "bytes", "data/*.fds"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.KeySpec != "srcip,dstip" {
		t.Errorf("KeySpec = %q, want %q", cfg.KeySpec, "srcip,dstip")
	}
	if cfg.SortSpec != "bytes" {
		t.Errorf("SortSpec = %q, want %q", cfg.SortSpec, "bytes")
	}
	if len(cfg.InputPatterns) != 1 || cfg.InputPatterns[0] != "data/*.fds" {
		t.Errorf("InputPatterns = %v, want [data/*.fds]", cfg.InputPatterns)
	}
	if cfg.ReaderKind != "jsonl" {
		t.Errorf("ReaderKind = %q, want default %q", cfg.ReaderKind, "jsonl")
	}
	if cfg.NumWorkers < 1 {
		t.Errorf("NumWorkers = %d, want >= 1", cfg.NumWorkers)
	}
	if cfg.TopN != NoLimit {
		t.Errorf("TopN = %d, want default %d (no limit)", cfg.TopN, NoLimit)
	}
}

func TestParseMissingInputPatternFails(t *testing.T) {
	if _, err := Parse([]string{"-a", "srcip", "-O", "bytes"}); err == nil {
		t.Fatal("Parse with no input patterns: want error, got nil")
	}
}

func TestParseMissingKeySpecFails(t *testing.T) {
	if _, err := Parse([]string{"-O", "bytes", "in.fds"}); err == nil {
		t.Fatal("Parse with no -a: want error, got nil")
	}
}

func TestParseMissingSortSpecFails(t *testing.T) {
	if _, err := Parse([]string{"-a", "srcip", "in.fds"}); err == nil {
		t.Fatal("Parse with no -O: want error, got nil")
	}
}

func TestParseNegativeTopNFails(t *testing.T) {
	if _, err := Parse([]string{"-a", "srcip", "-O", "bytes", "-n", "-2", "in.fds"}); err == nil {
		t.Fatal("Parse with -n -2: want error, got nil")
	}
}

func TestParseNoLimitTopNAccepted(t *testing.T) {
	cfg, err := Parse([]string{"-a", "srcip", "-O", "bytes", "-n", "-1", "in.fds"})
	if err != nil {
		t.Fatalf("Parse with -n -1: %v", err)
	}
	if cfg.TopN != NoLimit {
		t.Errorf("TopN = %d, want %d", cfg.TopN, NoLimit)
	}
}

func TestParseZeroWorkersFails(t *testing.T) {
	if _, err := Parse([]string{"-a", "srcip", "-O", "bytes", "-t", "0", "in.fds"}); err == nil {
		t.Fatal("Parse with -t 0: want error, got nil")
	}
}

func TestValidateAcceptsZeroTopN(t *testing.T) {
	cfg := &RunConfig{InputPatterns: []string{"x"}, KeySpec: "srcip", SortSpec: "bytes", NumWorkers: 1, TopN: 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v, want nil (0 is a valid literal top-N, not unlimited)", err)
	}
}

func TestResolveTopNZeroMeansZeroRecords(t *testing.T) {
	cfg := &RunConfig{TopN: 0}
	if got := cfg.ResolveTopN(50); got != 0 {
		t.Errorf("ResolveTopN(50) = %d, want 0", got)
	}
}

func TestResolveTopNNoLimitMeansTotal(t *testing.T) {
	cfg := &RunConfig{TopN: NoLimit}
	if got := cfg.ResolveTopN(50); got != 50 {
		t.Errorf("ResolveTopN(50) = %d, want 50", got)
	}
}

func TestResolveTopNPositiveValuePassesThrough(t *testing.T) {
	cfg := &RunConfig{TopN: 5}
	if got := cfg.ResolveTopN(50); got != 5 {
		t.Errorf("ResolveTopN(50) = %d, want 5", got)
	}
}
