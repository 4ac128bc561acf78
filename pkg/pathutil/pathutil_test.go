package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidkik/addonsync/pkg/errors"
)

func TestRelative(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		basePath string
		exp      string
	}{
		{
			name:     "Unix paths",
			path:     "/games/addons/Bagnon/core/bags.lua",
			basePath: "/games/addons",
			exp:      "Bagnon/core/bags.lua",
		},
		{
			name:     "Base with trailing separator",
			path:     "/games/addons/Bagnon/bagnon.toc",
			basePath: "/games/addons/",
			exp:      "Bagnon/bagnon.toc",
		},
		{
			name:     "Windows paths",
			path:     `C:\Games\AddOns\Bagnon\core\bags.lua`,
			basePath: `C:\Games\AddOns`,
			exp:      "Bagnon/core/bags.lua",
		},
		{
			name:     "Base is the path",
			path:     "/games/addons",
			basePath: "/games/addons",
			exp:      "",
		},
		{
			name:     "Base isn't a prefix",
			path:     `D:\Other\Bagnon\bags.lua`,
			basePath: `C:\Games\AddOns`,
			exp:      "D:/Other/Bagnon/bags.lua",
		},
		{
			name:     "Base appears later in the path",
			path:     "/backup/games/addons/x.lua",
			basePath: "/games/addons",
			exp:      "/backup/games/addons/x.lua",
		},
		{
			name:     "Empty base",
			path:     `Bagnon\bags.lua`,
			basePath: "",
			exp:      "Bagnon/bags.lua",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			actual := Relative(test.path, test.basePath)
			assert.Equal(t, test.exp, actual)
			assert.NotContains(t, actual, `\`)
		})
	}
}

func TestRelativeStrict(t *testing.T) {
	rel, err := RelativeStrict(`C:\Games\AddOns\Bagnon\bags.lua`, `C:\Games\AddOns`)
	assert.NoError(t, err)
	assert.Equal(t, "Bagnon/bags.lua", rel)

	rel, err = RelativeStrict("/games/addons/x.lua", "/games/addons/")
	assert.NoError(t, err)
	assert.Equal(t, "x.lua", rel)

	_, err = RelativeStrict("/games/addonsExtra/x.lua", "/games/addons")
	assert.Equal(t, errors.PathError, errors.KindOf(err))

	_, err = RelativeStrict("/elsewhere/x.lua", "/games/addons")
	assert.Equal(t, errors.PathError, errors.KindOf(err))
}

func TestIsUnder(t *testing.T) {
	assert.True(t, IsUnder("/a/b/c", "/a/b"))
	assert.True(t, IsUnder("/a/b", "/a/b/"))
	assert.False(t, IsUnder("/a/bc", "/a/b"))
	assert.True(t, IsUnder(`a\b\c`, "a/b"))
}
