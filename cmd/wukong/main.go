// Command wukong queries Solr collections from the command line.
package main

import "github.com/arloliu/wukong/cmd/wukong/cmd"

func main() {
	cmd.Execute()
}
