package tierlist

// RunOptimistic applies a local mutation before its remote counterpart
// and rolls the local state back when the remote side fails. The editor
// pairs each mutator with Undo as the rollback.
func RunOptimistic(applyLocal func(), action func() error, rollback func()) error {
	applyLocal()
	if err := action(); err != nil {
		rollback()
		return err
	}
	return nil
}
