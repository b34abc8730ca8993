package cascade

import (
	"fmt"
	"strings"
)

// DefaultSentinel is the phrase a model must emit when a document has no answer.
// It reads "this file does not answer your question".
const DefaultSentinel = "این فایل پاسخ سوال شما را ندارد."

// Prompt templates use positional verbs.
//
// Primary: %[1]s filename, %[2]s description, %[3]s query, %[4]s sentinel.
// Secondary: %[1]s query, %[2]s combined document text, %[3]s sentinel.
const (
	DefaultPrimaryPrompt = `
شما یک دستیار هوشمند هستید.
وظیفه شما پاسخ به سوال کاربر است بر اساس محتوای PDF:

عنوان فایل: %[1]s
توضیح فایل: %[2]s

سوال کاربر: %[3]s

پاسخ را فقط بر اساس متن فایل بده، اگر جواب نبود بگو:
"%[4]s"
`

	DefaultSecondaryPrompt = `
شما یک دستیار هوشمند هستید.
سوال کاربر: %[1]s

متن و توضیحات PDFها:
%[2]s

پاسخ را فقط بر اساس متن PDFها بده، اگر جواب نیست بگو:
"%[3]s"
`
)

const (
	primaryVerbs   = 4
	secondaryVerbs = 3
)

func checkTemplate(phase, template string, verbs int) error {
	for i := 1; i <= verbs; i++ {
		verb := fmt.Sprintf("%%[%d]s", i)
		if !strings.Contains(template, verb) {
			return fmt.Errorf("%w: %s template lacks %s", ErrInvalidPrompt, phase, verb)
		}
	}
	return nil
}

// Messages are the user-facing texts of error results.
type Messages struct {
	// MissingDirectory is returned when the documents directory does not exist.
	MissingDirectory string
	// MissingSecondary takes the Phase A reason as its only verb.
	MissingSecondary string
	// SecondaryFailed takes the provider error as its only verb.
	SecondaryFailed string
	// UnknownReason replaces an empty Phase A reason.
	UnknownReason string
}

// DefaultMessages returns the Persian messages shown to end users.
func DefaultMessages() Messages {
	return Messages{
		MissingDirectory: "❌ فولدر فایل‌ها موجود نیست!",
		MissingSecondary: "❌ خطای Gemini: %s، برای fallback به OpenAI API Key نیاز است.",
		SecondaryFailed:  "❌ خطای OpenAI: %s",
		UnknownReason:    "نامشخص",
	}
}

func (c *Cascade) primaryPrompt(filename, description, query string) string {
	return fmt.Sprintf(c.primaryTemplate, filename, description, query, c.sentinel)
}

func (c *Cascade) secondaryPrompt(query, combined string) string {
	return fmt.Sprintf(c.secondaryTemplate, query, combined, c.sentinel)
}

// documentHeader introduces one document in the combined Phase B text.
func documentHeader(filename, description string) string {
	return fmt.Sprintf("\n--- %s ---\nتوضیح: %s\n", filename, description)
}
