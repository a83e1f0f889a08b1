package mirror

import "testing"

func TestSummarize(t *testing.T) {
	results := []Result{
		{FullName: "a/1", Status: StatusCloned},
		{FullName: "a/2", Status: StatusUpdateFailed, Error: "not ff"},
		{FullName: "a/3", Status: StatusUpdated},
		{FullName: "a/4", Status: StatusError, Error: "cannot start"},
		{FullName: "a/5", Status: StatusCloned},
		{FullName: "a/6", Status: StatusCloneFailed, Error: "exit 128"},
	}

	s := Summarize(results)
	if s.Total != 6 || s.Cloned != 2 || s.Updated != 1 || s.Failed != 3 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	want := []string{"a/2", "a/4", "a/6"}
	if len(s.Failures) != len(want) {
		t.Fatalf("want %d failures, got %d", len(want), len(s.Failures))
	}
	for i, name := range want {
		if s.Failures[i].FullName != name {
			t.Errorf("failure %d: want %s, got %s", i, name, s.Failures[i].FullName)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Failed != 0 || s.Failures != nil {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestStatus_IsFailure(t *testing.T) {
	for st, want := range map[Status]bool{
		StatusCloned:       false,
		StatusUpdated:      false,
		StatusCloneFailed:  true,
		StatusUpdateFailed: true,
		StatusError:        true,
	} {
		if got := st.IsFailure(); got != want {
			t.Errorf("%s.IsFailure() = %v, want %v", st, got, want)
		}
	}
}
