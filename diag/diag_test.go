package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reoring/mpschema/model"
)

func TestIssue_Error(t *testing.T) {
	loc := model.Location{File: "zoo.mpack", Line: 4, Text: "name:strin 0"}
	is := New(loc, CodeUnknownType, "")
	got := is.Error()
	want := "zoo.mpack:4: unknown type [unknown_type]\n\tname:strin 0"
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if is.Class != ClassTypeExpression {
		t.Errorf("Class = %s", is.Class)
	}
	if got := Internal("boom %d", 1).Error(); got != "boom 1 [internal]" {
		t.Errorf("internal Error() = %q", got)
	}
}

func TestAsIssueThroughWrapping(t *testing.T) {
	err := fmt.Errorf("compiling: %w", Errorf(model.Location{}, CodeDuplicateIndex, "index %d", 3))
	is, ok := AsIssue(err)
	if !ok || is.Code != CodeDuplicateIndex || is.Message != "index 3" {
		t.Fatalf("AsIssue = %v, %t", is, ok)
	}
	if !HasCode(err, CodeDuplicateIndex) || HasCode(err, CodeUnknownType) {
		t.Error("HasCode")
	}
	if IsInternal(err) || !IsInternal(Internal("x")) {
		t.Error("IsInternal")
	}
	if _, ok := AsIssue(errors.New("plain")); ok {
		t.Error("plain error is not an issue")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(model.Location{File: "a.mpack"}, CodeSourceRead, cause, "read a.mpack")
	if !errors.Is(err, cause) || err.Class != ClassIO {
		t.Fatalf("Wrap lost the cause or class: %v", err)
	}
}

func TestLocate(t *testing.T) {
	loc := model.Location{File: "a.mpack", Line: 2}
	err := Locate(New(model.Location{}, CodeInvalidDefaultValue, ""), loc)
	if is, _ := AsIssue(err); is.Location != loc {
		t.Errorf("Location = %v", is.Location)
	}
	other := model.Location{File: "b.mpack", Line: 9}
	err = Locate(New(other, CodeInvalidDefaultValue, ""), loc)
	if is, _ := AsIssue(err); is.Location != other {
		t.Errorf("existing location overwritten: %v", is.Location)
	}
	if Locate(nil, loc) != nil {
		t.Error("nil stays nil")
	}
}

func TestIssues(t *testing.T) {
	var iss Issues
	iss = AppendIssues(iss, nil)
	iss = AppendIssues(iss, New(model.Location{File: "a", Line: 1}, CodeUnknownType, ""))
	iss = AppendIssues(iss, Issues{New(model.Location{File: "b", Line: 2}, CodeEmptyEnum, "")})
	iss = AppendIssues(iss, errors.New("no such file"))
	iss = AppendIssues(iss, New(model.Location{File: "c", Line: 3}, CodeUnknownImport, ""))
	if len(iss) != 4 {
		t.Fatalf("len = %d", len(iss))
	}
	if iss[2].Code != CodeSourceRead || iss[2].Cause == nil {
		t.Errorf("plain error recorded as %v", iss[2])
	}
	msg := iss.Error()
	if !strings.HasPrefix(msg, "unknown_type at a:1; empty_enum at b:2; ") || !strings.HasSuffix(msg, "(total 4)") {
		t.Errorf("Issues.Error() = %q", msg)
	}
	var err error = fmt.Errorf("wrapped: %w", iss)
	if got, ok := AsIssues(err); !ok || len(got) != 4 {
		t.Error("AsIssues through wrapping")
	}
	if _, ok := AsIssues(nil); ok {
		t.Error("AsIssues(nil)")
	}
}
