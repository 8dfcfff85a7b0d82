package core

import (
	"strings"

	"github.com/difylang/dbagent/internal/models"
)

// The agent encodes "please confirm" intent in free-form phrasing rather than
// a structured protocol field, so the client pattern-matches on the known
// wordings. The rule table lives here and nowhere else; if the backend ever
// grows a structured confirmation field, only this file changes.

// Detection is the result of classifying one assistant message.
type Detection struct {
	IsConfirmation bool
	Category       models.ConfirmationCategory
	Dangerous      bool
}

// confirmationMarkers lists the phrase combinations that identify a
// confirmation request. Markers are matched case-sensitively; any rule
// matching is enough.
var confirmationMarkers = [][]string{
	{"请确认，并回复", "是", "否"},
	{"以下是即将", "请确认", "回复"},
	{"请仔细检查以下将要删除的内容", "请输入"},
	{"即将【", "】的信息", "请确认"},
}

// categoryKeywords resolves the risk category by first match in priority
// order: delete beats modify beats add beats composite.
var categoryKeywords = []struct {
	category models.ConfirmationCategory
	keywords []string
}{
	{models.CategoryDelete, []string{"删除", "delete"}},
	{models.CategoryModify, []string{"修改", "modify", "更新"}},
	{models.CategoryAdd, []string{"新增", "添加", "add"}},
	{models.CategoryComposite, []string{"复合", "批量", "composite"}},
}

// Classify decides whether an assistant message is a confirmation request and,
// if so, what risk category it carries. Pure and deterministic: the same text
// always yields the same result.
func Classify(text string) Detection {
	if !isConfirmation(text) {
		return Detection{}
	}

	category := categoryOf(text)
	return Detection{
		IsConfirmation: true,
		Category:       category,
		Dangerous:      category == models.CategoryDelete,
	}
}

func isConfirmation(text string) bool {
	for _, markers := range confirmationMarkers {
		if containsAll(text, markers) {
			return true
		}
	}
	return false
}

func containsAll(text string, markers []string) bool {
	for _, marker := range markers {
		if !strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

// categoryOf is case-insensitive so English keywords match regardless of how
// the agent capitalizes them.
func categoryOf(text string) models.ConfirmationCategory {
	lowered := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.category
			}
		}
	}
	return models.CategoryModify
}
