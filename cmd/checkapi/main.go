// Command checkapi verifies that api/openapi.yaml matches the contract
// the server actually implements: the expected routes, their request and
// response media types, and the shared response schemas.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	Paths      map[string]map[string]operation `yaml:"paths"`
	Components struct {
		Schemas map[string]schema `yaml:"schemas"`
	} `yaml:"components"`
}

type operation struct {
	RequestBody *requestBody        `yaml:"requestBody"`
	Responses   map[string]response `yaml:"responses"`
}

type requestBody struct {
	Required bool                 `yaml:"required"`
	Content  map[string]mediaType `yaml:"content"`
}

type response struct {
	Content map[string]mediaType `yaml:"content"`
}

type mediaType struct {
	Schema schema `yaml:"schema"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Format     string            `yaml:"format"`
	Ref        string            `yaml:"$ref"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
}

func main() {
	path := "api/openapi.yaml"
	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [openapi.yaml]\n", os.Args[0])
		os.Exit(2)
	}
	if len(os.Args) == 2 {
		path = os.Args[1]
	}

	doc, err := loadDoc(path)
	if err != nil {
		exitErr(err)
	}

	if err := validatePromptRequest(doc); err != nil {
		exitErr(err)
	}
	if err := validatePromptResponse(doc); err != nil {
		exitErr(err)
	}
	if err := validateErrorResponse(doc); err != nil {
		exitErr(err)
	}
	if err := validateHealthRoute(doc); err != nil {
		exitErr(err)
	}
	if err := validateGenerateRoute(doc); err != nil {
		exitErr(err)
	}
	if err := validateBatchRoute(doc); err != nil {
		exitErr(err)
	}

	fmt.Println("OpenAPI contract check passed.")
}

func loadDoc(path string) (openAPIDoc, error) {
	var doc openAPIDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func getOperation(doc openAPIDoc, path, method string) (operation, error) {
	item, ok := doc.Paths[path]
	if !ok {
		return operation{}, fmt.Errorf("path %q missing", path)
	}
	op, ok := item[method]
	if !ok {
		return operation{}, fmt.Errorf("%s %s missing", strings.ToUpper(method), path)
	}
	return op, nil
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

func validatePromptRequest(doc openAPIDoc) error {
	s, err := getSchema(doc, "PromptRequest")
	if err != nil {
		return err
	}
	if s.Type != "object" {
		return errors.New("PromptRequest must be object")
	}
	if !makeSet(s.Required)["prompt"] {
		return errors.New(`PromptRequest.required must include "prompt"`)
	}
	if prop, ok := s.Properties["prompt"]; !ok || prop.Type != "string" {
		return errors.New("PromptRequest.prompt must be string")
	}
	return nil
}

func validatePromptResponse(doc openAPIDoc) error {
	s, err := getSchema(doc, "PromptResponse")
	if err != nil {
		return err
	}
	if s.Type != "object" {
		return errors.New("PromptResponse must be object")
	}
	required := makeSet(s.Required)
	for _, field := range []string{"prompt", "response"} {
		if !required[field] {
			return fmt.Errorf("PromptResponse.required must include %q", field)
		}
		if prop, ok := s.Properties[field]; !ok || prop.Type != "string" {
			return fmt.Errorf("PromptResponse.%s must be string", field)
		}
	}
	return nil
}

func validateErrorResponse(doc openAPIDoc) error {
	s, err := getSchema(doc, "ErrorResponse")
	if err != nil {
		return err
	}
	if s.Type != "object" {
		return errors.New("ErrorResponse must be object")
	}
	required := makeSet(s.Required)
	for _, field := range []string{"error", "code"} {
		if !required[field] {
			return fmt.Errorf("ErrorResponse.required must include %q", field)
		}
	}
	for _, field := range []string{"error", "code", "requestId"} {
		if prop, ok := s.Properties[field]; !ok || prop.Type != "string" {
			return fmt.Errorf("ErrorResponse.%s must be string", field)
		}
	}
	return nil
}

func validateHealthRoute(doc openAPIDoc) error {
	op, err := getOperation(doc, "/healthz", "get")
	if err != nil {
		return err
	}
	resp, ok := op.Responses["200"]
	if !ok {
		return errors.New("/healthz: missing 200 response")
	}
	if _, ok := resp.Content["application/json"]; !ok {
		return errors.New("/healthz: 200 response must be application/json")
	}
	return nil
}

func validateGenerateRoute(doc openAPIDoc) error {
	const route = "POST /generate/{provider}"
	op, err := getOperation(doc, "/generate/{provider}", "post")
	if err != nil {
		return err
	}
	if op.RequestBody == nil || !op.RequestBody.Required {
		return fmt.Errorf("%s: request body must be required", route)
	}
	media, ok := op.RequestBody.Content["application/json"]
	if !ok {
		return fmt.Errorf("%s: request body must be application/json", route)
	}
	if refName(media.Schema) != "PromptRequest" {
		return fmt.Errorf("%s: request body must reference PromptRequest", route)
	}
	okResp, ok := op.Responses["200"]
	if !ok {
		return fmt.Errorf("%s: missing 200 response", route)
	}
	okMedia, ok := okResp.Content["application/json"]
	if !ok || refName(okMedia.Schema) != "PromptResponse" {
		return fmt.Errorf("%s: 200 response must reference PromptResponse", route)
	}
	return ensureErrorResponses(route, op, "400", "404", "405", "500")
}

func validateBatchRoute(doc openAPIDoc) error {
	const route = "POST /batch/{provider}"
	op, err := getOperation(doc, "/batch/{provider}", "post")
	if err != nil {
		return err
	}
	if op.RequestBody == nil || !op.RequestBody.Required {
		return fmt.Errorf("%s: request body must be required", route)
	}
	media, ok := op.RequestBody.Content["multipart/form-data"]
	if !ok {
		return fmt.Errorf("%s: request body must be multipart/form-data", route)
	}
	if !makeSet(media.Schema.Required)["file"] {
		return fmt.Errorf(`%s: upload schema must require "file"`, route)
	}
	fileProp, ok := media.Schema.Properties["file"]
	if !ok || fileProp.Type != "string" || fileProp.Format != "binary" {
		return fmt.Errorf("%s: file part must be a binary string", route)
	}
	okResp, ok := op.Responses["200"]
	if !ok {
		return fmt.Errorf("%s: missing 200 response", route)
	}
	if _, ok := okResp.Content["text/csv"]; !ok {
		return fmt.Errorf("%s: 200 response must be text/csv", route)
	}
	return ensureErrorResponses(route, op, "400", "404", "405", "500")
}

func ensureErrorResponses(route string, op operation, statuses ...string) error {
	for _, status := range statuses {
		resp, ok := op.Responses[status]
		if !ok {
			return fmt.Errorf("%s: missing %s response", route, status)
		}
		media, ok := resp.Content["application/json"]
		if !ok {
			return fmt.Errorf("%s: %s response must be application/json", route, status)
		}
		if refName(media.Schema) != "ErrorResponse" {
			return fmt.Errorf("%s: %s response must reference ErrorResponse", route, status)
		}
	}
	return nil
}

func refName(s schema) string {
	ref := strings.TrimSpace(s.Ref)
	return strings.TrimPrefix(ref, "#/components/schemas/")
}

func makeSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = true
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
