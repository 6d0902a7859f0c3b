// Package e2e drives whole programs through the pipeline (frontend parse,
// checker, jsprint) against fixed scenarios, one txtar archive each, per
// the project's "one archive per scenario" testing convention.
package e2e

import (
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/typeforge/tfc/internal/checker"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/frontend"
	"github.com/typeforge/tfc/internal/jsprint"
)

// scenario holds the parsed contents of one archive: the source under
// test and either the JS it must residualize to (expect.js, success
// cases) or the "stage:kind" the returned Diagnostic must carry
// (expect.diag, failure cases).
type scenario struct {
	name        string
	input       string
	expectJS    string
	hasExpectJS bool
	expectDiag  string
}

func loadScenario(t *testing.T, name, archive string) scenario {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	sc := scenario{name: name}
	for _, f := range ar.Files {
		switch f.Name {
		case "input.tfc":
			sc.input = string(f.Data)
		case "expect.js":
			sc.expectJS = string(f.Data)
			sc.hasExpectJS = true
		case "expect.diag":
			sc.expectDiag = strings.TrimSpace(string(f.Data))
		default:
			t.Fatalf("%s: unexpected archive file %q", name, f.Name)
		}
	}
	if sc.input == "" {
		t.Fatalf("%s: archive has no input.tfc", name)
	}
	return sc
}

func run(t *testing.T, sc scenario) {
	t.Helper()
	prog, err := frontend.Parse(sc.name, sc.input)
	if err != nil {
		t.Fatalf("%s: parse: %v", sc.name, err)
	}
	checked, err := checker.New(0).Check(prog)
	if sc.expectDiag != "" {
		if err == nil {
			t.Fatalf("%s: expected an error, compiled successfully", sc.name)
		}
		dg, ok := err.(*diag.Diagnostic)
		if !ok {
			t.Fatalf("%s: expected a *diag.Diagnostic, got %T: %v", sc.name, err, err)
		}
		got := string(dg.Stage) + ":" + string(dg.Kind)
		if got != sc.expectDiag {
			t.Fatalf("%s: expected diagnostic %q, got %q (%v)", sc.name, sc.expectDiag, got, dg)
		}
		return
	}
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", sc.name, err)
	}
	got := jsprint.Program(checked.Residual)
	if sc.hasExpectJS && got != sc.expectJS {
		t.Fatalf("%s: residual mismatch\n got: %q\nwant: %q", sc.name, got, sc.expectJS)
	}
}

const literalArithmeticErasesArchive = `
-- input.tfc --
(const x (binary + 1 1))
-- expect.js --
`

func TestLiteralArithmeticErasesToEmptyResidual(t *testing.T) {
	run(t, loadScenario(t, "literal-arithmetic-erases", literalArithmeticErasesArchive))
}

const awaitForcesResidualizationArchive = `
-- input.tfc --
(const x (await (binary + 1 1)))
-- expect.js --
const x = (await 2);
`

func TestAwaitForcesResidualization(t *testing.T) {
	run(t, loadScenario(t, "await-forces-residualization", awaitForcesResidualizationArchive))
}

const comptimeAssertFailsArchive = `
-- input.tfc --
(const ok (call assert false))
-- expect.diag --
typecheck:AssertionFailed
`

func TestComptimeAssertFailureIsReported(t *testing.T) {
	run(t, loadScenario(t, "comptime-assert-fails", comptimeAssertFailsArchive))
}

const comptimeAssertPassesArchive = `
-- input.tfc --
(const ok (call assert true))
-- expect.js --
`

func TestComptimeAssertPassErasesToEmptyResidual(t *testing.T) {
	run(t, loadScenario(t, "comptime-assert-passes", comptimeAssertPassesArchive))
}

const boundedGenericViolationArchive = `
-- input.tfc --
(const identity (lambda ((t (bound Number)) (x (type t))) x))
(const bad (call identity (typeargs String) "hi"))
-- expect.diag --
typecheck:ConstraintViolation
`

func TestBoundedGenericViolationIsReported(t *testing.T) {
	run(t, loadScenario(t, "bounded-generic-violation", boundedGenericViolationArchive))
}

const comptimeConstSurvivesTypeAnnotationArchive = `
-- input.tfc --
(const x (type Int) (binary + 20 22))
(const y (await x))
-- expect.js --
const y = (await 42);
`

func TestComptimeConstWithTypeAnnotationFolds(t *testing.T) {
	run(t, loadScenario(t, "comptime-const-with-type-annotation-folds", comptimeConstSurvivesTypeAnnotationArchive))
}

const comptimeSpecialFormFoldsArchive = `
-- input.tfc --
(const x (call comptime (binary + 20 22)))
(const y (await x))
-- expect.js --
const y = (await 42);
`

func TestComptimeSpecialFormForcesNowAndFolds(t *testing.T) {
	run(t, loadScenario(t, "comptime-special-form-folds", comptimeSpecialFormFoldsArchive))
}

const comptimeSpecialFormRejectsLaterArchive = `
-- input.tfc --
(const input (call runtime (binary + 1 1)))
(const x (call comptime input))
-- expect.diag --
typecheck:StagingError
`

func TestComptimeSpecialFormRejectsResidualArgument(t *testing.T) {
	run(t, loadScenario(t, "comptime-special-form-rejects-later", comptimeSpecialFormRejectsLaterArchive))
}

const runtimeSpecialFormResidualizesArchive = `
-- input.tfc --
(const x (call runtime (binary + 20 22)))
-- expect.js --
const x = (() => {
  const runtimeValue = 42;
  return runtimeValue;
})();
`

func TestRuntimeSpecialFormForcesLaterEvenForNowValue(t *testing.T) {
	run(t, loadScenario(t, "runtime-special-form-residualizes", runtimeSpecialFormResidualizesArchive))
}

const runtimeSpecialFormNamedBindingArchive = `
-- input.tfc --
(const x (call runtime (binary + 20 22) "total"))
-- expect.js --
const x = (() => {
  const total = 42;
  return total;
})();
`

func TestRuntimeSpecialFormHonorsNameArgument(t *testing.T) {
	run(t, loadScenario(t, "runtime-special-form-named-binding", runtimeSpecialFormNamedBindingArchive))
}
