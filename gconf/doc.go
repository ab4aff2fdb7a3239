/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps at most one configuration object, stored under the
"_c:<package name>" key. Configuration is loaded from the genesis file "conf"
section and can be updated later by its owner using the
UpdateConfigurationHandler.
*/
package gconf
