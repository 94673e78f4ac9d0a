package watcher

// WatchList returns the directories w currently watches.
func WatchList(w *Watcher) []string {
	return w.fsWatcher.WatchList()
}
