// Package discovery finds route modules in a directory tree and loads the
// router each module exports.
//
// Every file under Config.Dir whose name ends in Config.Ext becomes one
// module. Its mount path is the file path relative to Dir with separators
// normalized to "/" and the extension removed:
//
//	routes/widgets.go        -> "widgets"
//	routes/admin/users.go    -> "admin/users"
//
// The module is loaded from the matching build artifact under Config.OutDir
// (routes/admin/users.go -> build/admin/users.so) by a Loader. PluginLoader
// opens Go plugins; Registry serves routers registered at compile time.
//
// Loading is all-or-nothing: a missing module, a loader failure or a value
// that is not a router fails the whole Resolve call with a *LoadError.
package discovery
