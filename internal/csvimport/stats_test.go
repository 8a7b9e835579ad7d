// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsHeaderJA = "キャラクター名,HP,攻撃力,防御力,速度,EP,ステータスブースト1種別,ステータスブースト1数値,ステータスブースト2種別,ステータスブースト2数値,ステータスブースト3種別,ステータスブースト3数値\n"

func TestParseStats(t *testing.T) {
	input := statsHeaderJA +
		"ロビン,1281,640,485,102,160,攻撃力%,28,HP%,18,速度,5\n" +
		"トリビー,1047,,,96,120,,,,,,\n" +
		"短い,1,2\n" +
		"壊れ,abc,1,1,1,1,,,,,,\n" +
		",,,,,,,,,,,\n"

	res, err := New(nil).ParseStats(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Len(t, res.Warnings, 2)

	robin := res.Rows[0]
	assert.Equal(t, "ロビン", robin.Name)
	require.NotNil(t, robin.HP)
	assert.Equal(t, 1281, *robin.HP)
	assert.Equal(t, "攻撃力%", robin.StatBoosts[0].Type)
	require.NotNil(t, robin.StatBoosts[0].Value)
	assert.InDelta(t, 28.0, *robin.StatBoosts[0].Value, 0.001)

	tribbie := res.Rows[1]
	assert.Nil(t, tribbie.Attack)
	assert.Nil(t, tribbie.Defense)
	require.NotNil(t, tribbie.Speed)
	assert.Equal(t, 96, *tribbie.Speed)
	assert.Empty(t, tribbie.StatBoosts[2].Type)
	assert.Nil(t, tribbie.StatBoosts[2].Value)
}

func TestParseStatsEnglishHeader(t *testing.T) {
	input := "Name,HP,Attack,Defense,Speed,EP,stat_boost_1_type,stat_boost_1_value,stat_boost_2_type,stat_boost_2_value,stat_boost_3_type,stat_boost_3_value\n" +
		"Robin,1281,640,485,102,160,ATK%,28,HP%,18,SPD,5\n"

	res, err := New(nil).ParseStats(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Robin", res.Rows[0].Name)
}

func TestParseStatsErrors(t *testing.T) {
	_, err := New(nil).ParseStats(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = New(nil).ParseStats(strings.NewReader("キャラクター名,ロビン\n"))
	assert.ErrorIs(t, err, ErrStatsHeader)
}
