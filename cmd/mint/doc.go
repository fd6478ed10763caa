// Command mint creates attendance tokens from the command line, either for
// a single recipient or for a whole event from a CSV of recipients.
package main
