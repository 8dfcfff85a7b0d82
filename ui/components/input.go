package components

import (
	"github.com/difylang/dbagent/ui/styles"
)

func RenderInput(input string, width int) string {
	inputStyle := styles.InputStyle(width)
	return inputStyle.Render(input)
}
