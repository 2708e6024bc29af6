// Command i18nlint checks widget translation override files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/richxcame/waste-chat/pkg/i18n"
)

func main() {
	dir := flag.String("d", "./locales", "directory of YAML locale files")
	failOnError := flag.Bool("fail", false, "exit with code 1 if any issue found")
	strict := flag.Bool("strict", false, "treat missing keys as issues")
	flag.Parse()

	os.Exit(run(os.Stdout, *dir, *failOnError, *strict))
}

func run(w io.Writer, dir string, failOnError, strict bool) int {
	res, err := i18n.Lint(dir)
	if err != nil {
		fmt.Fprintln(w, "Error:", err)
		return 1
	}

	printResult(w, res)

	if failOnError && res.HasIssues(strict) {
		return 1
	}
	return 0
}

func printResult(w io.Writer, res *i18n.LintResult) {
	fmt.Fprintln(w, "=== I18N CHECK RESULT ===")
	fmt.Fprintln(w, "Languages:", res.Languages)
	fmt.Fprintln(w, "Total keys:", len(i18n.Keys))

	for _, lang := range res.Languages {
		fmt.Fprintf(w, "\n--- [%s] ---\n", lang)
		printKeys(w, "Missing keys", res.MissingKeys[lang])
		printKeys(w, "Unknown keys", res.UnknownKeys[lang])
		printKeys(w, "Empty keys", res.EmptyKeys[lang])
	}

	if len(res.Errors) > 0 {
		files := make([]string, 0, len(res.Errors))
		for f := range res.Errors {
			files = append(files, f)
		}
		sort.Strings(files)

		fmt.Fprintln(w, "\nFile errors:")
		for _, f := range files {
			fmt.Fprintf(w, "  - %s: %v\n", f, res.Errors[f])
		}
	}
}

func printKeys(w io.Writer, label string, keys []string) {
	if len(keys) == 0 {
		fmt.Fprintf(w, "%s: None\n", label)
		return
	}
	fmt.Fprintf(w, "%s:\n", label)
	for _, k := range keys {
		fmt.Fprintln(w, "  -", k)
	}
}
