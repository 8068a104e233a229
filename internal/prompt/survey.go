package prompt

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// Interactive prompts on the terminal with survey.Confirm, grounded on
// this module's go.mod dependency on github.com/AlecAivazis/survey/v2.
// Realizes original_source/backupper/src/dialog.rs's retry_dialog as a
// terminal confirm rather than a native message box, since this
// repository has no GUI toolkit in its dependency stack.
type Interactive struct{}

func (Interactive) Retry(title, message string) bool {
	var again bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s\n%s\nRetry?", title, message),
		Default: true,
	}
	if err := survey.AskOne(prompt, &again); err != nil {
		return false
	}
	return again
}
