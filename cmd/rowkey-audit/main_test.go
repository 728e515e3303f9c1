package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yungbote/sheetshare-backend/internal/data/repos"
)

func TestReportExitCodes(t *testing.T) {
	var out bytes.Buffer
	if code := report(&out, nil, false); code != exitOK {
		t.Fatalf("no collisions: want=%d got=%d", exitOK, code)
	}
	if !strings.Contains(out.String(), "0 shared row key(s)") {
		t.Fatalf("summary missing: %q", out.String())
	}

	out.Reset()
	found := []repos.RowKeyCollision{{SheetID: 3, RowKey: "dup", Owners: 2}}
	if code := report(&out, found, false); code != exitCollisions {
		t.Fatalf("collisions: want=%d got=%d", exitCollisions, code)
	}
	if !strings.Contains(out.String(), "sheet=3 row_key=dup owners=2") {
		t.Fatalf("collision line missing: %q", out.String())
	}
}

func TestReportJSON(t *testing.T) {
	var out bytes.Buffer
	if code := report(&out, nil, true); code != exitOK {
		t.Fatalf("exit: want=%d got=%d", exitOK, code)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Fatalf("empty result should print [], got %q", out.String())
	}

	out.Reset()
	found := []repos.RowKeyCollision{{SheetID: 5, RowKey: "k", Owners: 3}}
	if code := report(&out, found, true); code != exitCollisions {
		t.Fatalf("exit: want=%d got=%d", exitCollisions, code)
	}
	var decoded []repos.RowKeyCollision
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != found[0] {
		t.Fatalf("decoded: %+v", decoded)
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-nope"}, &stdout, &stderr); code != exitFailure {
		t.Fatalf("exit: want=%d got=%d", exitFailure, code)
	}
}
