// Package llm renders the drafting, insight and style prompts and talks to
// the Gemini API through google.golang.org/genai.
package llm
