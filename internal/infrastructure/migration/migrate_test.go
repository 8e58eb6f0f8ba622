package migration

import (
	"errors"
	"testing"

	"clipsync/internal/app/server/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMigrator мок для интерфейса Migrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

var testDB = config.DB{DatabaseURI: "postgres://localhost/test", Migrations: "migrations"}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(1), false, nil)
	mockM.On("Close").Return(nil, nil)

	var gotSource, gotDB string
	engine := func(source, db string) (Migrator, error) {
		gotSource, gotDB = source, db
		return mockM, nil
	}

	version, err := NewMigration(testDB, engine).Up()

	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.Equal(t, "file://migrations", gotSource)
	assert.Equal(t, testDB.DatabaseURI, gotDB)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)
	// ErrNoChange не должна считаться ошибкой
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Version").Return(uint(1), false, nil)
	mockM.On("Close").Return(nil, nil)

	_, err := NewMigration(testDB, func(string, string) (Migrator, error) { return mockM, nil }).Up()

	assert.NoError(t, err)
}

func TestMigration_Up_Dirty(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(2), true, nil)
	mockM.On("Close").Return(nil, nil)

	_, err := NewMigration(testDB, func(string, string) (Migrator, error) { return mockM, nil }).Up()

	assert.ErrorContains(t, err, "dirty")
}

func TestMigration_Up_Failure(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(errors.New("syntax error at or near"))
	mockM.On("Close").Return(nil, nil)

	_, err := NewMigration(testDB, func(string, string) (Migrator, error) { return mockM, nil }).Up()

	assert.ErrorContains(t, err, "migrate up")
	mockM.AssertNotCalled(t, "Version")
}

func TestMigration_Up_EngineError(t *testing.T) {
	// Ошибка на этапе создания мигратора (например, неверный драйвер)
	engine := func(source, db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	_, err := NewMigration(testDB, engine).Up()

	assert.ErrorContains(t, err, "engine crash")
}

func TestMigration_Up_CloseError(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(1), false, nil)
	mockM.On("Close").Return(nil, errors.New("db close failed"))

	_, err := NewMigration(testDB, func(string, string) (Migrator, error) { return mockM, nil }).Up()

	assert.ErrorContains(t, err, "db close failed")
}
