package classifier

import "testing"

func TestClassifyCredit(t *testing.T) {
	c := New(nil)
	got := c.Classify("What is my credit score looking like?")
	if got.Type != TypeCredit {
		t.Errorf("Expected credit, got %s", got.Type)
	}
	if len(got.Matched) == 0 {
		t.Error("Expected matched keywords for audit")
	}
}

func TestClassifyMultiDataTieBreak(t *testing.T) {
	c := New(nil)
	got := c.Classify("Analyze credit and transactions for test@example.com")
	if got.Type != TypeMultiData {
		t.Errorf("Expected multi_data, got %s", got.Type)
	}
}

func TestClassifyStatus(t *testing.T) {
	c := New(nil)
	got := c.Classify("What is the account status for test@example.com?")
	if got.Type != TypeStatus {
		t.Errorf("Expected status, got %s", got.Type)
	}
}

func TestClassifyPhone(t *testing.T) {
	c := New(nil)
	got := c.Classify("Which phone is registered for Jane Doe?")
	if got.Type != TypePhone {
		t.Errorf("Expected phone, got %s", got.Type)
	}
}

func TestClassifyFallback(t *testing.T) {
	c := New(nil)
	for _, text := range []string{
		"Tell me a joke",
		"",
		"   ",
	} {
		got := c.Classify(text)
		if got.Type != TypeFallback {
			t.Errorf("Classify(%q): expected fallback, got %s", text, got.Type)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := New(nil)
	got := c.Classify("SHOW MY TRANSACTIONS")
	if got.Type != TypeTransaction {
		t.Errorf("Expected transaction, got %s", got.Type)
	}
}

func TestRulesMerge(t *testing.T) {
	rules := DefaultRules().Merge(map[string][]string{
		"credit": {"bonitet"},
	})
	c := New(rules)
	if got := c.Classify("bonitet check please"); got.Type != TypeCredit {
		t.Errorf("Expected credit from overridden keywords, got %s", got.Type)
	}
	if got := c.Classify("credit score"); got.Type == TypeCredit {
		t.Errorf("Default credit keywords should be replaced, got %s", got.Type)
	}
}

func TestNeedsTool(t *testing.T) {
	if NeedsTool(TypeStatus) {
		t.Error("status should not imply a tool call")
	}
	if NeedsTool(TypeFallback) {
		t.Error("fallback should not imply a tool call")
	}
	for _, qt := range []QueryType{TypeCredit, TypeTransaction, TypePhone, TypeMultiData} {
		if !NeedsTool(qt) {
			t.Errorf("%s should imply a tool call", qt)
		}
	}
}
