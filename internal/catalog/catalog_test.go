package catalog

import (
	"context"
	"testing"

	"capture-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCatalog_Lookup(t *testing.T) {
	names := map[int]string{1: "FOO"}
	c := New(names)
	names[2] = "BAR"

	name, ok := c.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "FOO", name)

	_, ok = c.Lookup(2)
	assert.False(t, ok, "catalog does not see later map changes")
	assert.Equal(t, UnknownName, c.Name(2))
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, UnknownName, c.Name(UnknownCode))
	assert.Equal(t, "EAN 13", c.Name(1))
	assert.Equal(t, "QRCODE", c.Name(15))

	entries := c.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, UnknownCode, entries[0].Code)
	assert.Equal(t, 45, entries[len(entries)-1].Code)
}

func TestLoad_SeedsOnceAndReadsTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Symbology{}))

	ctx := context.Background()
	c, err := Load(ctx, db)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), len(defaultNames))

	require.NoError(t, db.Model(&models.Symbology{}).Where("id = ?", 15).Update("name", "QR").Error)

	c, err = Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "QR", c.Name(15))

	var count int64
	require.NoError(t, db.Model(&models.Symbology{}).Count(&count).Error)
	assert.EqualValues(t, len(defaultNames), count)
}
