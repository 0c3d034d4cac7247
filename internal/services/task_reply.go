package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	types "github.com/yungbote/model3d-backend/internal/domain"
	"github.com/yungbote/model3d-backend/internal/platform/apierr"
)

// FailureNoTaskID is the reason recorded when a reply carries no task id.
const FailureNoTaskID = "no task identifier in reply"

// looseString accepts a JSON string or number. Any other shape decodes as "".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err == nil {
			*s = looseString(strings.TrimSpace(v))
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if _, err := strconv.ParseFloat(string(b), 64); err == nil {
			*s = looseString(b)
		}
	}
	return nil
}

// urlRef is an artifact reference: {"url": "..."} or a bare string.
type urlRef struct {
	URL string
}

func (u *urlRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err == nil {
			u.URL = strings.TrimSpace(v)
		}
	case '{':
		var obj struct {
			URL looseString `json:"url"`
		}
		if err := json.Unmarshal(b, &obj); err == nil {
			u.URL = string(obj.URL)
		}
	}
	return nil
}

type taskReplyFields struct {
	TaskID        looseString `json:"task_id"`
	ModelMesh     urlRef      `json:"model_mesh"`
	RenderedImage urlRef      `json:"rendered_image"`
}

// taskEnvelope is the provider's usual {"code":0,"data":{...}} wrapper.
// A data member that is not an object is ignored.
type taskEnvelope struct {
	fields *taskReplyFields
}

func (e *taskEnvelope) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	var f taskReplyFields
	if err := json.Unmarshal(b, &f); err == nil {
		e.fields = &f
	}
	return nil
}

type taskReply struct {
	taskReplyFields
	Data taskEnvelope `json:"data"`
}

// InterpretTaskReply decodes a raw provider reply into an outcome. Only a
// reply that is not valid JSON is an error; any valid reply without a task
// id, arrays and scalars included, is a Failure outcome.
func InterpretTaskReply(raw string) (types.TaskOutcome, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if !json.Valid(trimmed) {
		return types.TaskOutcome{}, apierr.Newf(apierr.KindInterpretation, "reply_not_json",
			"mesh provider reply is not valid JSON").WithRaw(raw)
	}
	if trimmed[0] != '{' {
		return types.Failure(FailureNoTaskID), nil
	}

	var reply taskReply
	if err := json.Unmarshal(trimmed, &reply); err != nil {
		return types.TaskOutcome{}, apierr.New(apierr.KindInterpretation, "reply_undecodable",
			fmt.Errorf("decode mesh provider reply: %w", err)).WithRaw(raw)
	}

	fields := reply.taskReplyFields
	if fields.TaskID == "" && reply.Data.fields != nil {
		fields = *reply.Data.fields
	}
	if fields.TaskID == "" {
		return types.Failure(FailureNoTaskID), nil
	}
	return types.Success(string(fields.TaskID), fields.ModelMesh.URL, fields.RenderedImage.URL), nil
}
