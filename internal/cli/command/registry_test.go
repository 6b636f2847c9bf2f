package command_test

import (
	"encoding/json"
	"testing"

	"github.com/tigabum/christian-platform/internal/cli/command"
)

func TestRegistryKeysAreWellFormed(t *testing.T) {
	commands := command.Registry()
	if len(commands) == 0 {
		t.Fatalf("expected registered commands")
	}
	for key, cmd := range commands {
		if cmd.Service == "" || cmd.Action == "" || cmd.Method == "" || cmd.PathTemplate == "" {
			t.Fatalf("incomplete command %q: %+v", key, cmd)
		}
	}
}

func TestBuildRequestAnswer(t *testing.T) {
	commands := command.Registry()
	cmd, ok := commands["question answer"]
	if !ok {
		t.Fatalf("missing question answer command")
	}
	params := command.Params{}
	params.Set("id", "42")
	params.Set("content", "Weekly observance is the historic norm.")

	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if req.Method != "PATCH" {
		t.Fatalf("unexpected method: %s", req.Method)
	}
	if req.Path != "/api/v1/questions/42/answer" {
		t.Fatalf("unexpected path: %s", req.Path)
	}
	var payload map[string]string
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		t.Fatalf("unmarshal body failed: %v", err)
	}
	if payload["content"] != "Weekly observance is the historic norm." {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestBuildRequestWorklistQuery(t *testing.T) {
	commands := command.Registry()
	cmd := commands["question worklist"]
	params := command.Params{}
	params.Set("status", "pending")

	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if req.Query.Get("status") != "pending" {
		t.Fatalf("expected status query param, got %v", req.Query)
	}
	if len(req.Body) != 0 {
		t.Fatalf("GET command should not carry a body")
	}
}

func TestBuildRequestMissingPathParam(t *testing.T) {
	commands := command.Registry()
	cmd := commands["question claim"]
	if _, err := command.BuildRequest(cmd, command.Params{}); err == nil {
		t.Fatalf("expected missing id to fail")
	}
}

func TestParamsAliases(t *testing.T) {
	commands := command.Registry()
	cmd := commands["admin assign"]
	params := command.Params{}
	params.Set("id", "42")
	params.Set("responder", "7")

	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	var payload map[string]int64
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		t.Fatalf("unmarshal body failed: %v", err)
	}
	if payload["responder_id"] != 7 {
		t.Fatalf("alias was not canonicalized: %v", payload)
	}
}
