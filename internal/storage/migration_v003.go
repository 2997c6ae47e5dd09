package storage

import "database/sql"

// defaultContracts seeds the keyword table of a fresh database.
var defaultContracts = []ContractKeyword{
	{Keyword: "pflege", ContractID: "#4012", Task: "Dauertätigkeit"},
	{Keyword: "verbesserung", ContractID: "#4012", Task: "Dauertätigkeit"},
	{Keyword: "features", ContractID: "#4013", Task: "Dauertätigkeit"},
	{Keyword: "betrieb", ContractID: "#4014", Task: "Dauertätigkeit"},
	{Keyword: "openslides-allgemein", ContractID: "#3969", Task: "Dauertätigkeit"},
	{Keyword: "relationale datenbank", ContractID: "#4015", Task: "Projekt"},
	{Keyword: "keycloak", ContractID: "#4016", Task: "Projekt"},
	{Keyword: "crypto-vote", ContractID: "#4017", Task: "Projekt"},
	{Keyword: "projektor-service", ContractID: "#4019", Task: "Projekt"},
}

// migrateV003 seeds the default contract keywords, skipping pairs that exist.
func migrateV003(tx *sql.Tx, d Dialect) error {
	for _, kw := range defaultContracts {
		if _, err := tx.Exec(d.Rebind(insertKeywordSQL), kw.Keyword, kw.ContractID, kw.Task, kw.Keyword, kw.ContractID); err != nil {
			return err
		}
	}
	return nil
}
