//go:build !js

package store

import _ "modernc.org/sqlite"
