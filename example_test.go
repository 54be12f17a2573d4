package mailprobe_test

import (
	"context"
	"fmt"

	"github.com/optimode/mailprobe"
)

func ExampleVerifier_Verify() {
	v := mailprobe.New()

	result, _ := v.Verify(context.Background(), "missing-at-sign")
	fmt.Println(result.Classification)

	result, _ = v.Verify(context.Background(), "Postmaster@example.com")
	fmt.Println(result.Classification)
	// Output:
	// invalid_format
	// role_based
}

func ExampleVerifier_WithRoleAccounts() {
	v := mailprobe.New().WithRoleAccounts([]string{"billing", "press"})

	result, _ := v.Verify(context.Background(), "press@example.com")
	fmt.Println(result.Classification, result.Valid)
	// Output: role_based false
}

func ExampleVerifier_VerifyMany() {
	v := mailprobe.New()
	emails := []string{"a@b@example.com", "sales@example.com", "bad"}

	results, _ := v.VerifyMany(context.Background(), emails, mailprobe.ConcurrencyOptions{
		Workers: 2,
	})

	for _, r := range results {
		fmt.Printf("%-18s %s\n", r.Email, r.Classification)
	}
	// Output:
	// a@b@example.com    invalid_format
	// sales@example.com  role_based
	// bad                invalid_format
}

func ExampleResult_FailedChecks() {
	result, _ := mailprobe.New().Verify(context.Background(), "missing-at-sign")

	for _, c := range result.FailedChecks() {
		fmt.Printf("[%s] %s\n", c.Level, c.Details)
	}
	// Output:
	// [syntax] address must contain exactly one @
}

func ExampleResult_CheckFor() {
	result, _ := mailprobe.New().Verify(context.Background(), "info@example.com")

	if syntax, ok := result.CheckFor(mailprobe.LevelSyntax); ok {
		fmt.Println(syntax.Passed, syntax.Details)
	}
	// Output: true syntax ok
}

func ExampleClassifications() {
	results, _ := mailprobe.New().VerifyMany(context.Background(), []string{"nope", "admin@example.com"})
	m := mailprobe.Classifications(results)
	fmt.Println(m["nope"], m["admin@example.com"])
	// Output: invalid_format role_based
}
