// Command verify checks from the command line whether assets are genuine
// attendance tokens. It exits non-zero when any asset fails verification.
package main
