package utils

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tkmOnce sync.Once
	tkm     *tiktoken.Tiktoken
	tkmErr  error
)

// CountTokens measures text with the gpt-4 tokenizer, a serviceable proxy
// for every backend the pipeline talks to.
func CountTokens(text string) (int, error) {
	tkmOnce.Do(func() {
		tkm, tkmErr = tiktoken.EncodingForModel("gpt-4-0613")
	})
	if tkmErr != nil {
		return 0, tkmErr
	}
	return len(tkm.Encode(text, nil, nil)), nil
}
