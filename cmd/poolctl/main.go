// Command poolctl runs allocation scripts against a fixed memory pool.
package main

func main() {
	execute()
}
