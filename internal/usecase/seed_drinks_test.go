package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

func TestSeedDrinksUseCase_Execute_EmptyTable(t *testing.T) {
	mockRepo := new(MockDrinkRepository)
	uc := NewSeedDrinksUseCase(mockRepo)

	mockRepo.On("Count", mock.Anything).Return(0, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *model.Drink) bool {
		return d.Title == "water" && len(d.Recipe) == 1 && d.Recipe[0] == model.Ingredient{Name: "water", Color: "blue", Parts: 1}
	})).Return(nil)

	n, err := uc.Execute(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	mockRepo.AssertExpectations(t)
}

func TestSeedDrinksUseCase_Execute_AlreadySeeded(t *testing.T) {
	mockRepo := new(MockDrinkRepository)
	uc := NewSeedDrinksUseCase(mockRepo)

	mockRepo.On("Count", mock.Anything).Return(3, nil)

	n, err := uc.Execute(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, n)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSeedDrinksUseCase_Execute_CountError(t *testing.T) {
	mockRepo := new(MockDrinkRepository)
	uc := NewSeedDrinksUseCase(mockRepo)

	mockRepo.On("Count", mock.Anything).Return(0, errors.New("relation \"drinks\" does not exist"))

	_, err := uc.Execute(context.Background())

	assert.Error(t, err)
}

func TestDefaultSeedDrinks_Valid(t *testing.T) {
	for _, d := range DefaultSeedDrinks() {
		assert.NoError(t, d.Validate())
	}
}
