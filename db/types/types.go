package types

// Migration is a single schema change applied by db.RunMigrationsDB.
// SQL holds both directions separated by the sql-migrate markers; Prefix is
// prepended to the ID and replaces "/*dbprefix*/" inside SQL so several
// components can share one database file.
type Migration struct {
	ID     string
	SQL    string
	Prefix string
}
