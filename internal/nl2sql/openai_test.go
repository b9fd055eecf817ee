package nl2sql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func newTestTranslator(t *testing.T, handler http.HandlerFunc) (*OpenAITranslator, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	translator, err := NewOpenAITranslator(OpenAIConfig{
		BaseURL: server.URL,
		APIKey:  "sk-test",
		Model:   "gpt-3.5-turbo",
	})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}
	return translator, server
}

func TestTranslateStripsMarkdownFence(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	translator, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(completionResponse("```sql\nSELECT E1_NUM FROM SE1010\n```"))
	})

	result, err := translator.Translate(context.Background(), Request{
		Question:   "which invoices are open?",
		SchemaText: "Table SE1010: E1_NUM (varchar)",
		Dialect:    "sqlserver",
	})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if result.SQL != "SELECT E1_NUM FROM SE1010" {
		t.Fatalf("SQL = %q", result.SQL)
	}
	if result.Model != "gpt-3.5-turbo" {
		t.Fatalf("Model = %q", result.Model)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", messages)
	}
	system, _ := messages[0].(map[string]any)
	if content, _ := system["content"].(string); !strings.Contains(content, "T-SQL") {
		t.Fatalf("system prompt should name the dialect: %q", content)
	}
}

func TestTranslateHTTPErrorFails(t *testing.T) {
	translator, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_api_key"}`, http.StatusUnauthorized)
	})

	_, err := translator.Translate(context.Background(), Request{Question: "q"})
	if err == nil {
		t.Fatal("Translate() should fail on HTTP 401")
	}
	if !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("error = %v", err)
	}
}

func TestTranslateEmptyChoicesFails(t *testing.T) {
	translator, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := translator.Translate(context.Background(), Request{Question: "q"})
	if err == nil {
		t.Fatal("Translate() should fail on empty choices")
	}
}

func TestTranslateEmptySQLFails(t *testing.T) {
	translator, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse("```sql\n\n```"))
	})

	_, err := translator.Translate(context.Background(), Request{Question: "q"})
	if err == nil {
		t.Fatal("Translate() should fail on empty SQL")
	}
}

func TestNewOpenAITranslatorRequiresKey(t *testing.T) {
	_, err := NewOpenAITranslator(OpenAIConfig{BaseURL: "https://api.openai.com"})
	if err == nil {
		t.Fatal("NewOpenAITranslator() without key should fail")
	}
}

func TestStripMarkdownSQL(t *testing.T) {
	got := StripMarkdownSQL("```sql\nSELECT 1\n```")
	if got != "SELECT 1" {
		t.Fatalf("StripMarkdownSQL() = %q", got)
	}
	if got := StripMarkdownSQL("  SELECT 1  "); got != "SELECT 1" {
		t.Fatalf("StripMarkdownSQL() = %q", got)
	}
}
