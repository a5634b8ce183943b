//go:build !bitfielddebug

package bits

const debug = false
