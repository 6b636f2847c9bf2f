package command

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service:      "auth",
			Action:       "register",
			Method:       "POST",
			PathTemplate: "/api/v1/auth/register",
			Fields: []Field{
				{Name: "name", Prompt: "name", Type: FieldString, Required: true},
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "auth",
			Action:       "login",
			Method:       "POST",
			PathTemplate: "/api/v1/auth/login",
			Fields: []Field{
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "auth",
			Action:       "me",
			Method:       "GET",
			PathTemplate: "/api/v1/auth/me",
			RequiresAuth: true,
		},
		{
			Service:      "question",
			Action:       "create",
			Method:       "POST",
			PathTemplate: "/api/v1/questions",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "title", Prompt: "title", Type: FieldString, Required: true},
				{Name: "content", Prompt: "content", Type: FieldString, Required: true},
				{Name: "is_public", Aliases: []string{"public"}, Prompt: "is_public", Type: FieldBool, Required: false},
				{Name: "is_anonymous", Aliases: []string{"anonymous"}, Prompt: "is_anonymous", Type: FieldBool, Required: false},
				{Name: "content_file", Prompt: "content_file", Type: FieldFile, Required: false},
			},
		},
		{
			Service:      "question",
			Action:       "public",
			Method:       "GET",
			PathTemplate: "/api/v1/questions/public",
			Fields: []Field{
				{Name: "limit", Prompt: "limit", Type: FieldInt64, Required: false, Query: true},
				{Name: "offset", Prompt: "offset", Type: FieldInt64, Required: false, Query: true},
			},
		},
		{
			Service:      "question",
			Action:       "mine",
			Method:       "GET",
			PathTemplate: "/api/v1/questions/my",
			RequiresAuth: true,
		},
		{
			Service:      "question",
			Action:       "worklist",
			Method:       "GET",
			PathTemplate: "/api/v1/questions/worklist",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "status", Prompt: "status (all|pending|assigned|answered)", Type: FieldString, Required: false, Query: true},
			},
		},
		{
			Service:      "question",
			Action:       "get",
			Method:       "GET",
			PathTemplate: "/api/v1/questions/:id",
			Fields: []Field{
				{Name: "id", Prompt: "question_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "question",
			Action:       "claim",
			Method:       "PATCH",
			PathTemplate: "/api/v1/questions/:id/claim",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "question_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "question",
			Action:       "begin",
			Method:       "PATCH",
			PathTemplate: "/api/v1/questions/:id/begin",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "question_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "question",
			Action:       "answer",
			Method:       "PATCH",
			PathTemplate: "/api/v1/questions/:id/answer",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "question_id", Type: FieldInt64, Required: true},
				{Name: "content", Prompt: "answer content", Type: FieldString, Required: true},
				{Name: "content_file", Prompt: "content_file", Type: FieldFile, Required: false},
			},
		},
		{
			Service:      "question",
			Action:       "close",
			Method:       "PATCH",
			PathTemplate: "/api/v1/questions/:id/close",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "question_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "responder",
			Action:       "directory",
			Method:       "GET",
			PathTemplate: "/api/v1/users/responders",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "expertise", Prompt: "expertise", Type: FieldString, Required: false, Query: true},
			},
		},
		{
			Service:      "admin",
			Action:       "create-responder",
			Method:       "POST",
			PathTemplate: "/api/v1/admin/responders",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "name", Prompt: "name", Type: FieldString, Required: true},
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true},
				{Name: "expertise", Prompt: "expertise (comma-separated)", Type: FieldStringList, Required: true},
			},
		},
		{
			Service:      "admin",
			Action:       "responders",
			Method:       "GET",
			PathTemplate: "/api/v1/admin/responders",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "status", Prompt: "status (active|inactive)", Type: FieldString, Required: false, Query: true},
				{Name: "search", Prompt: "search", Type: FieldString, Required: false, Query: true},
				{Name: "expertise", Prompt: "expertise", Type: FieldString, Required: false, Query: true},
			},
		},
		{
			Service:      "admin",
			Action:       "responder",
			Method:       "GET",
			PathTemplate: "/api/v1/admin/responders/:id",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "responder_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "admin",
			Action:       "update-responder",
			Method:       "PUT",
			PathTemplate: "/api/v1/admin/responders/:id",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "responder_id", Type: FieldInt64, Required: true},
				{Name: "name", Prompt: "name", Type: FieldString, Required: false},
				{Name: "email", Prompt: "email", Type: FieldString, Required: false},
				{Name: "password", Prompt: "password", Type: FieldString, Required: false},
				{Name: "expertise", Prompt: "expertise (comma-separated)", Type: FieldStringList, Required: false},
				{Name: "active", Prompt: "active (true|false)", Type: FieldBool, Required: false},
			},
		},
		{
			Service:      "admin",
			Action:       "assign",
			Method:       "POST",
			PathTemplate: "/api/v1/admin/questions/:id/assign",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "question_id", Type: FieldInt64, Required: true},
				{Name: "responder_id", Aliases: []string{"responder"}, Prompt: "responder_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "admin",
			Action:       "stats",
			Method:       "GET",
			PathTemplate: "/api/v1/admin/dashboard/stats",
			RequiresAuth: true,
		},
		{
			Service:      "admin",
			Action:       "activities",
			Method:       "GET",
			PathTemplate: "/api/v1/admin/dashboard/activities",
			RequiresAuth: true,
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		key := fmt.Sprintf("%s %s", cmd.Service, cmd.Action)
		result[key] = cmd
	}
	return result
}

// BuildRequest creates an HTTP request spec based on command.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	params.Canonicalize(cmd.Fields)
	path, err := buildPath(cmd.PathTemplate, params)
	if err != nil {
		return RequestSpec{}, err
	}

	query := url.Values{}
	for _, field := range cmd.Fields {
		if !field.Query {
			continue
		}
		if value := params.Get(field.Name); value != "" {
			query.Set(field.Name, value)
		}
	}

	var body []byte
	if cmd.Method != "GET" && cmd.Method != "DELETE" {
		payload, err := buildPayload(cmd, params)
		if err != nil {
			return RequestSpec{}, err
		}
		if payload != nil {
			body, err = json.Marshal(payload)
			if err != nil {
				return RequestSpec{}, fmt.Errorf("marshal request body failed: %w", err)
			}
		}
	}

	return RequestSpec{
		Method: cmd.Method,
		Path:   path,
		Query:  query,
		Body:   body,
	}, nil
}

func buildPath(template string, params Params) (string, error) {
	path := template
	if strings.Contains(path, ":id") {
		value := params.Get("id")
		if value == "" {
			return "", fmt.Errorf("missing path parameter: id")
		}
		path = strings.ReplaceAll(path, ":id", value)
	}
	return path, nil
}

func buildPayload(cmd Command, params Params) (interface{}, error) {
	switch cmd.Service {
	case "auth":
		switch cmd.Action {
		case "register":
			return map[string]string{
				"name":     params.Get("name"),
				"email":    params.Get("email"),
				"password": params.Get("password"),
			}, nil
		case "login":
			return map[string]string{
				"email":    params.Get("email"),
				"password": params.Get("password"),
			}, nil
		}
	case "question":
		switch cmd.Action {
		case "create":
			content, err := contentOrFile(params)
			if err != nil {
				return nil, err
			}
			payload := map[string]interface{}{
				"title":   params.Get("title"),
				"content": content,
			}
			if params.Get("is_public") != "" {
				isPublic, err := ParseBool(params.Get("is_public"))
				if err != nil {
					return nil, fmt.Errorf("invalid is_public: %w", err)
				}
				payload["is_public"] = isPublic
			}
			if params.Get("is_anonymous") != "" {
				isAnonymous, err := ParseBool(params.Get("is_anonymous"))
				if err != nil {
					return nil, fmt.Errorf("invalid is_anonymous: %w", err)
				}
				payload["is_anonymous"] = isAnonymous
			}
			return payload, nil
		case "answer":
			content, err := contentOrFile(params)
			if err != nil {
				return nil, err
			}
			return map[string]string{"content": content}, nil
		}
	case "admin":
		switch cmd.Action {
		case "create-responder":
			return map[string]interface{}{
				"name":      params.Get("name"),
				"email":     params.Get("email"),
				"password":  params.Get("password"),
				"expertise": ParseStringList(params.Get("expertise")),
			}, nil
		case "update-responder":
			payload := map[string]interface{}{}
			for _, key := range []string{"name", "email", "password"} {
				if params.Get(key) != "" {
					payload[key] = params.Get(key)
				}
			}
			if params.Get("expertise") != "" {
				payload["expertise"] = ParseStringList(params.Get("expertise"))
			}
			if params.Get("active") != "" {
				active, err := ParseBool(params.Get("active"))
				if err != nil {
					return nil, fmt.Errorf("invalid active: %w", err)
				}
				payload["active"] = active
			}
			return payload, nil
		case "assign":
			responderID, err := ParseInt64(params.Get("responder_id"))
			if err != nil {
				return nil, fmt.Errorf("invalid responder_id: %w", err)
			}
			return map[string]interface{}{"responder_id": responderID}, nil
		}
	}
	return nil, nil
}

func contentOrFile(params Params) (string, error) {
	content := params.Get("content")
	if (content == "" || content == "_file_") && params.Get("content_file") != "" {
		data, err := ReadFile(params.Get("content_file"))
		if err != nil {
			return "", err
		}
		content = data
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("content is required")
	}
	return content, nil
}
