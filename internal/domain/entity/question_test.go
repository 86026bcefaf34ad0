package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestion_IsUncategorized(t *testing.T) {
	assert.True(t, (&Question{ID: "q1"}).IsUncategorized(), "Вопрос без категории должен считаться некатегоризированным")
	assert.False(t, (&Question{ID: "q1", CategoryID: "cat-a"}).IsUncategorized())
}

func TestQuestion_HasText(t *testing.T) {
	assert.True(t, (&Question{Question: "Что такое горутина?"}).HasText())
	assert.False(t, (&Question{Question: "   "}).HasText(), "Пробелы не считаются текстом")
	assert.False(t, (&Question{}).HasText())
}

func TestQuestion_ToQuestionCategory(t *testing.T) {
	q := &Question{ID: "q1", CategoryID: "cat-a", Question: "text"}

	assert.Equal(t, QuestionCategory{QuestionID: "q1", CategoryID: "cat-a"}, q.ToQuestionCategory())
}

func TestQuestionMap_IsActive(t *testing.T) {
	catalog := QuestionMap{
		"q1": {ID: "q1", IsActive: true},
		"q2": {ID: "q2", IsActive: false},
	}

	assert.True(t, catalog.IsActive("q1"))
	assert.False(t, catalog.IsActive("q2"), "Неактивный вопрос")
	assert.False(t, catalog.IsActive("missing"), "Отсутствующий вопрос")
}
