package services

import (
	"testing"

	"github.com/yungbote/model3d-backend/internal/platform/apierr"
)

func TestInterpretTaskReply(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		wantOK     bool
		taskID     string
		meshURL    string
		previewURL string
	}{
		{
			name:       "full success",
			raw:        `{"task_id":"abc123","model_mesh":{"url":"https://cdn/mesh.glb"},"rendered_image":{"url":"https://cdn/preview.png"}}`,
			wantOK:     true,
			taskID:     "abc123",
			meshURL:    "https://cdn/mesh.glb",
			previewURL: "https://cdn/preview.png",
		},
		{
			name:   "task id only",
			raw:    `{"task_id":"t-1"}`,
			wantOK: true,
			taskID: "t-1",
		},
		{
			name:    "enveloped",
			raw:     `{"code":0,"data":{"task_id":"t-2","model_mesh":{"url":"https://m"}}}`,
			wantOK:  true,
			taskID:  "t-2",
			meshURL: "https://m",
		},
		{
			name:   "numeric task id",
			raw:    `{"task_id":77}`,
			wantOK: true,
			taskID: "77",
		},
		{name: "empty object", raw: `{}`},
		{name: "empty task id", raw: `{"task_id":"  "}`},
		{name: "null task id", raw: `{"task_id":null}`},
		{name: "provider error body", raw: `{"code":2010,"message":"insufficient credit"}`},
		{name: "odd data member", raw: `{"data":"nope"}`},
		{name: "odd mesh member", raw: `{"model_mesh":[1,2]}`},
		{name: "empty array", raw: `[]`},
		{name: "array", raw: `[1,2]`},
		{name: "null", raw: `null`},
		{name: "string", raw: `"abc"`},
		{name: "number", raw: `42`},
		{name: "padded scalar", raw: "  true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := InterpretTaskReply(tc.raw)
			if err != nil {
				t.Fatalf("InterpretTaskReply: unexpected error %v", err)
			}
			if out.Succeeded() != tc.wantOK {
				t.Fatalf("succeeded: want=%v got=%v", tc.wantOK, out.Succeeded())
			}
			if !tc.wantOK {
				if out.Reason() != FailureNoTaskID {
					t.Fatalf("reason: want=%q got=%q", FailureNoTaskID, out.Reason())
				}
				return
			}
			if out.TaskID() != tc.taskID {
				t.Fatalf("task id: want=%q got=%q", tc.taskID, out.TaskID())
			}
			if got := deref(out.MeshURL()); got != tc.meshURL {
				t.Fatalf("mesh url: want=%q got=%q", tc.meshURL, got)
			}
			if got := deref(out.PreviewURL()); got != tc.previewURL {
				t.Fatalf("preview url: want=%q got=%q", tc.previewURL, got)
			}
		})
	}
}

func TestInterpretTaskReplyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{``, `not json`, `<html>502</html>`, `{"task_id":`, `[1,`, `{"a":1} trailing`} {
		_, err := InterpretTaskReply(raw)
		if got := apierr.KindOf(err); got != apierr.KindInterpretation {
			t.Fatalf("InterpretTaskReply(%q): want kind=%q got=%q", raw, apierr.KindInterpretation, got)
		}
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
