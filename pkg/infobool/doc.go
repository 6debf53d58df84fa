// Package infobool wraps compiled rules with a per-frame value cache. A UI
// asks for a rule many times while drawing one frame; Get evaluates it at most
// once per frame and hands back the cached value otherwise, except for item
// dependent rules queried with an item, which are always evaluated fresh.
package infobool
