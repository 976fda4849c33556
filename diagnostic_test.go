// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !integration

package configdoctor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"rivaas.dev/configdoctor/codec"
)

func TestLocateLine(t *testing.T) {
	t.Parallel()

	data := []byte("{\n  \"a\": 1,\n  \"b\": ,\n  \"c\": 3\n}\n")

	t.Run("codec locator", func(t *testing.T) {
		t.Parallel()

		var v map[string]any
		err := codec.JSONCodec{}.Decode(data, &v)
		assert.Equal(t, 3, LocateLine(codec.JSONCodec{}, err, data))
	})

	t.Run("message pattern", func(t *testing.T) {
		t.Parallel()

		dec := &MockDecoder{}
		assert.Equal(t, 2, LocateLine(dec, errors.New("unexpected token at line 2"), data))
		assert.Equal(t, 4, LocateLine(dec, errors.New("[4:7] bad indentation"), data))
		assert.Equal(t, 3, LocateLine(dec, errors.New("config.ini:3: bad key"), data))
	})

	t.Run("pattern out of range falls through", func(t *testing.T) {
		t.Parallel()

		plain := []byte("first\nsecond\n")
		assert.Equal(t, 0, LocateLine(&MockDecoder{}, errors.New("line 99 is broken"), plain))
	})

	t.Run("heuristic", func(t *testing.T) {
		t.Parallel()

		tomlish := []byte("# comment\nname = \"api\"\n")
		assert.Equal(t, 2, LocateLine(&MockDecoder{}, errors.New("invalid character"), tomlish))

		yamlish := []byte("\n\nserver:\n  port: 80\n")
		assert.Equal(t, 3, LocateLine(&MockDecoder{}, errors.New("boom"), yamlish))
	})

	t.Run("quoted equals ignored", func(t *testing.T) {
		t.Parallel()

		quoted := []byte("\"a=b\"\n'x=y'\n")
		assert.Equal(t, 0, LocateLine(&MockDecoder{}, errors.New("boom"), quoted))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 0, LocateLine(codec.JSONCodec{}, nil, data))
	})
}

func TestLineContext(t *testing.T) {
	t.Parallel()

	data := []byte("one\ntwo\nthree\nfour\nfive\n")

	assert.Equal(t, "  2 | two\n> 3 | three\n  4 | four\n", LineContext(data, 3, 1))
	assert.Equal(t, "> 1 | one\n  2 | two\n", LineContext(data, 1, 1))
	assert.Equal(t, "> 5 | five\n", LineContext(data, 5, 0))
	assert.Empty(t, LineContext(data, 0, 2))
	assert.Empty(t, LineContext(data, 6, 2))
	assert.Empty(t, LineContext(nil, 1, 2))
}

func TestLineContext_Width(t *testing.T) {
	t.Parallel()

	data := []byte("1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n")
	assert.Equal(t, "   9 | 9\n> 10 | 10\n  11 | 11\n", LineContext(data, 10, 1))
}
