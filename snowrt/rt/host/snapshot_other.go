//go:build !darwin

package host

// copyWindowRecords has no compositor to ask off macOS.
func copyWindowRecords() []rawWindowRecord {
	return nil
}
