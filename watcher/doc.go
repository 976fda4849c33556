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

// Package watcher implements file change notification on top of fsnotify.
//
// [FS] satisfies the configdoctor Watcher contract: Subscribe watches a
// directory and reports writes and creations of the files in it. Bursts of
// events for the same file, such as an editor truncating and then writing a
// file, are coalesced into one delivery (see [WithDebounce]).
//
// Deliveries for one subscription never overlap. Closing a subscription
// drops pending deliveries and waits for a running one to return, so a
// callback must not close its own subscription.
//
// # Example
//
//	fs := watcher.New(watcher.WithLogger(logger))
//	sub, err := fs.Subscribe("/etc/myapp", func(path string) {
//	    log.Println("changed:", path)
//	})
//	if err != nil {
//	    return err
//	}
//	defer sub.Close()
package watcher
