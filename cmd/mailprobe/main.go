// Command mailprobe verifies email addresses from the command line or over HTTP.
package main

func main() {
	Execute()
}
