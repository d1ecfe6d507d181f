package timeline

import "testing"

func TestRenderAllPlaceholders(t *testing.T) {
	got := Render(
		"{{ protagonist }} assigned {{ task_link }} to {{ deuteragonist }}.",
		RenderContext{
			Protagonist:   "Jane Doe",
			Deuteragonist: "John Roe",
			TaskLink:      "case 43355",
		},
	)
	want := "Jane Doe assigned case 43355 to John Roe."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderProtoSelf(t *testing.T) {
	got := Render(
		"{{ protagonist }} assigned {{ task_link }} to {{ proto_self }}.",
		RenderContext{Protagonist: "Jane Doe", TaskLink: "case 1"},
	)
	want := "Jane Doe assigned case 1 to themselves."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Unresolved actors render as empty strings, never as errors.
func TestRenderEmptyContext(t *testing.T) {
	got := Render(
		"{{ protagonist }} commented on {{ task_link }}.",
		RenderContext{},
	)
	want := " commented on ."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderPlainMessageUntouched(t *testing.T) {
	msg := "nothing to substitute here"
	if got := Render(msg, RenderContext{Protagonist: "X"}); got != msg {
		t.Errorf("got %q, want %q", got, msg)
	}
}
