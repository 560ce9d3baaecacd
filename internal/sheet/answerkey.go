package sheet

import (
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// maxKeyQuestion bounds answer key question numbers to a sane range; a key
// claiming question 5000 is a malformed file, not a big sheet.
const maxKeyQuestion = 200

// ParseAnswerKey decodes and validates an answer key file.
//
// The expected format is a JSON object mapping question numbers to option
// indices, e.g. {"1": 0, "2": 3}. Question numbers must be integers in
// [1, 200]; option indices must be integers in [0, layout.Options).
//
// Validation failures return an error wrapping ErrConfiguration naming the
// offending entry.
func ParseAnswerKey(raw []byte, layout Layout) (AnswerKey, error) {
	var decoded map[string]int
	if err := jsoniter.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: answer key is not a JSON object of question to option: %v", ErrConfiguration, err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: answer key has no entries", ErrConfiguration)
	}

	key := make(AnswerKey, len(decoded))
	for field, option := range decoded {
		question, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: question number %q is not an integer", ErrConfiguration, field)
		}
		if question < 1 || question > maxKeyQuestion {
			return nil, fmt.Errorf("%w: question number %d is out of range (1-%d)", ErrConfiguration, question, maxKeyQuestion)
		}
		if option < 0 || option >= layout.Options {
			return nil, fmt.Errorf("%w: answer for question %d must be in [0, %d), got %d",
				ErrConfiguration, question, layout.Options, option)
		}
		key[question] = option
	}

	return key, nil
}
