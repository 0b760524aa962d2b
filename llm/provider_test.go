package llm

import "testing"

func TestNewProviderDispatchesByName(t *testing.T) {
	cases := []string{"ollama", "lmstudio", "openrouter", "openai", "groq", "xai", "gemini", "custom"}
	for _, name := range cases {
		p, err := NewProvider(Config{Provider: name, Model: "test-model"})
		if err != nil {
			t.Errorf("NewProvider(%q) returned error: %v", name, err)
		}
		if p == nil {
			t.Errorf("NewProvider(%q) returned nil provider", name)
		}
	}
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "not-a-real-provider"}); err == nil {
		t.Fatal("expected an error for an unknown provider name")
	}
}

func TestNewProviderRejectsEmpty(t *testing.T) {
	if _, err := NewProvider(Config{}); err == nil {
		t.Fatal("expected an error when no provider is specified")
	}
}
