package params

import "testing"

// SetupTestConfigCleanup preserves configurations, allowing tests to modify
// them without any undesired side effects in other tests.
func SetupTestConfigCleanup(t testing.TB) {
	prevConfig := RestakingConfig().Copy()
	t.Cleanup(func() {
		OverrideRestakingConfig(prevConfig)
	})
}
