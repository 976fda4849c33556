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

package configdoctor_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"rivaas.dev/configdoctor"
	"rivaas.dev/configdoctor/codec"
)

// writeExample writes content to a file in a fresh temporary directory.
func writeExample(name, content string) (string, func()) {
	dir, err := os.MkdirTemp("", "configdoctor-example")
	if err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err = os.WriteFile(path, []byte(content), 0o600); err != nil {
		log.Fatal(err)
	}
	return path, func() { _ = os.RemoveAll(dir) }
}

// Example demonstrates basic provider usage.
func Example() {
	path, cleanup := writeExample("config.yaml", `
server:
  host: localhost
  port: 8080
database:
  name: mydb
`)
	defer cleanup()

	p, err := configdoctor.Open(context.Background(), path)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	fmt.Println(p.String("server.host"))
	fmt.Println(p.Int("server.port"))
	fmt.Println(p.GetNested("none", "database", "name"))
	fmt.Println(p.Get("database.user", "postgres"))

	// Output:
	// localhost
	// 8080
	// mydb
	// postgres
}

// ExampleDetectFormat demonstrates extension-based format detection.
func ExampleDetectFormat() {
	for _, ext := range []string{".json", "YML", "app.toml", ".ini"} {
		format, err := configdoctor.DetectFormat(ext)
		if err != nil {
			fmt.Printf("%s: %v\n", ext, errors.Is(err, configdoctor.ErrUnsupportedFormat))
			continue
		}
		fmt.Printf("%s: %s\n", ext, format)
	}

	// Output:
	// .json: json
	// YML: yaml
	// app.toml: toml
	// .ini: true
}

// ExampleProvider_Validate demonstrates reporting every missing key at once.
func ExampleProvider_Validate() {
	path, cleanup := writeExample("config.json", `{"a": {"b": 0}}`)
	defer cleanup()

	p := configdoctor.MustOpen(context.Background(), path)

	err := p.Validate("a.b", "x.y", "a.c")
	var cfgErr *configdoctor.Error
	if errors.As(err, &cfgErr) {
		fmt.Println(cfgErr.Code(), cfgErr.Missing)
	}

	// Output:
	// missing_required_keys [x.y a.c]
}

// ExampleWithModel demonstrates validating and decoding into a struct.
func ExampleWithModel() {
	type Server struct {
		Host    string        `config:"host" default:"0.0.0.0"`
		Port    int           `config:"port" validate:"required,min=1"`
		Timeout time.Duration `config:"timeout"`
	}

	path, cleanup := writeExample("server.toml", "port = 8443\ntimeout = \"15s\"\n")
	defer cleanup()

	p, err := configdoctor.Open(context.Background(), path, configdoctor.WithModel(Server{}))
	if err != nil {
		log.Fatal(err)
	}

	server, err := configdoctor.AsModel[Server](p)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(server.Host, server.Port, server.Timeout)

	// Output:
	// 0.0.0.0 8443 15s
}

// ExampleWithFormat demonstrates reading a file whose extension does not name its format.
func ExampleWithFormat() {
	path, cleanup := writeExample("app.conf", "name = \"billing\"\n")
	defer cleanup()

	p, err := configdoctor.Open(context.Background(), path, configdoctor.WithFormat(codec.TypeTOML))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(p.Format(), p.String("name"))

	// Output:
	// toml billing
}

// ExampleProvider_Reload demonstrates that a failed reload keeps the last good document.
func ExampleProvider_Reload() {
	path, cleanup := writeExample("config.json", `{"replicas": 3}`)
	defer cleanup()

	p := configdoctor.MustOpen(context.Background(), path)

	_ = os.WriteFile(path, []byte(`{"replicas": `), 0o600)
	err := p.Reload(context.Background())
	fmt.Println(errors.Is(err, configdoctor.ErrParse), p.Int("replicas"))

	_ = os.WriteFile(path, []byte(`{"replicas": 5}`), 0o600)
	err = p.Reload(context.Background())
	fmt.Println(err, p.Int("replicas"))

	// Output:
	// true 3
	// <nil> 5
}

// ExampleGetOr demonstrates typed access with defaults.
func ExampleGetOr() {
	path, cleanup := writeExample("config.yaml", "workers: \"8\"\n")
	defer cleanup()

	p := configdoctor.MustOpen(context.Background(), path)
	fmt.Println(configdoctor.GetOr(p, "workers", 1))
	fmt.Println(configdoctor.GetOr(p, "queue.size", 100))

	// Output:
	// 8
	// 100
}
