package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dtv-fixtures/internal/config"
	"dtv-fixtures/internal/excel"
	"dtv-fixtures/internal/models"
)

type storeMock struct{ mock.Mock }

func (m *storeMock) EnsureTable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *storeMock) InsertPersons(ctx context.Context, fixture string, people []models.Person) (int64, error) {
	args := m.Called(ctx, fixture, people)
	return args.Get(0).(int64), args.Error(1)
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		OutputDir:       filepath.Join(t.TempDir(), "output"),
		Seed:            21,
		NameSource:      "list",
		ThresholdMeters: 2000,
	}
}

func TestFixtureService_GenerateProximity(t *testing.T) {
	cfg := testConfig(t)
	svc := NewFixtureService(cfg, nil)

	res, err := svc.Generate(context.Background(), Request{Scenario: ScenarioProximity}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "archivo_prueba_dtv_100_personas.xlsx", res.Filename)
	assert.Equal(t, 100, res.Rows)
	assert.Empty(t, res.Problems)
	assert.Contains(t, res.Summary, "76 dentro de 2000m de puntos pickit")
	assert.Contains(t, res.Summary, "24 fuera del rango")
	_, err = os.Stat(res.Path)
	require.NoError(t, err)
}

func TestFixtureService_GenerateProximityOverride(t *testing.T) {
	svc := NewFixtureService(testConfig(t), nil)

	res, err := svc.Generate(context.Background(), Request{Scenario: ScenarioProximity, Total: 20, Within: 5}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "archivo_prueba_dtv_20_personas.xlsx", res.Filename)
	assert.Equal(t, 20, res.Rows)
	assert.Empty(t, res.Problems)
}

func TestFixtureService_GenerateDuplicatesSeeds(t *testing.T) {
	cfg := testConfig(t)
	store := new(storeMock)
	store.On("EnsureTable", mock.Anything).Return(nil).Once()
	store.On("InsertPersons", mock.Anything, "archivo_prueba_duplicados", mock.AnythingOfType("[]models.Person")).
		Return(int64(12), nil).Once()

	svc := NewFixtureService(cfg, store)
	var logs []string
	res, err := svc.Generate(context.Background(), Request{Scenario: ScenarioDuplicates}, nil, func(msg string) { logs = append(logs, msg) })
	require.NoError(t, err)

	assert.Equal(t, int64(12), res.Seeded)
	assert.Empty(t, res.Problems)
	assert.Contains(t, res.Summary, "personas únicas (deduplicated): 9")
	assert.NotEmpty(t, logs)
	store.AssertExpectations(t)

	customers, err := excel.ReadFixture(res.Path)
	require.NoError(t, err)
	assert.Len(t, customers, 12)
}

func TestFixtureService_GenerateStoreError(t *testing.T) {
	store := new(storeMock)
	store.On("EnsureTable", mock.Anything).Return(errors.New("db down")).Once()

	svc := NewFixtureService(testConfig(t), store)
	_, err := svc.Generate(context.Background(), Request{Scenario: ScenarioDuplicates}, nil, nil)
	require.Error(t, err)
	store.AssertNotCalled(t, "InsertPersons", mock.Anything, mock.Anything, mock.Anything)
}

func TestFixtureService_GenerateInvalid(t *testing.T) {
	svc := NewFixtureService(testConfig(t), nil)

	_, err := svc.Generate(context.Background(), Request{Scenario: "weather"}, nil, nil)
	require.Error(t, err)

	_, err = svc.Generate(context.Background(), Request{Scenario: ScenarioProximity, Total: 10, Within: 11}, nil, nil)
	require.Error(t, err)
}

func TestFixtureService_Verify(t *testing.T) {
	cfg := testConfig(t)
	svc := NewFixtureService(cfg, nil)

	gen, err := svc.Generate(context.Background(), Request{Scenario: ScenarioProximity}, nil, nil)
	require.NoError(t, err)

	res, err := svc.Verify(context.Background(), gen.Path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 76, res.Report.Within)
	assert.Equal(t, 24, res.Report.Outside)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "archivo_prueba_dtv_100_personas_fuera_rango.xlsx"), res.ExportPath)

	outside, err := excel.OpenFile(res.ExportPath)
	require.NoError(t, err)
	defer outside.Close()
	rows, err := outside.GetRows("Fuera de Rango")
	require.NoError(t, err)
	assert.Len(t, rows, 25)
}
