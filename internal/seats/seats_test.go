package seats

import "testing"

func TestNumber_TruncatesLongScheduleId(t *testing.T) {
	got := Number("0a1b2c3d-4e5f-6789-abcd-ef0123456789", 7)
	want := "SN-0a1b2c3d-7"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestNumber_ShortScheduleId(t *testing.T) {
	got := Number("sched", 1)
	want := "SN-sched-1"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestNumbers_SequentialFromStart(t *testing.T) {
	got := Numbers("sched", 5, 3)
	want := []string{"SN-sched-5", "SN-sched-6", "SN-sched-7"}

	if len(got) != len(want) {
		t.Fatalf("Expected %d numbers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Index %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNumbers_Unique(t *testing.T) {
	numbers := Numbers("sched", 1, 50)
	seen := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		if seen[n] {
			t.Fatalf("Duplicate seat number %s", n)
		}
		seen[n] = true
	}
}
