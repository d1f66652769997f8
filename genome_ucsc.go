/* Copyright (C) 2016 Philipp Benner
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */


package pseudobulk

/* -------------------------------------------------------------------------- */

import "database/sql"
import "fmt"

import _ "github.com/go-sql-driver/mysql"

/* -------------------------------------------------------------------------- */

// Public UCSC MySQL server, the assembly is used as database name.
const DefaultUCSCDataSource = "genome@tcp(genome-mysql.soe.ucsc.edu:3306)/%s"

/* import chromosome sizes from ucsc
 * -------------------------------------------------------------------------- */

// Import chromosome sizes from the chromInfo table of a UCSC genome database.
// Failures are returned as *FetchError.
func ImportGenomeFromUCSC(dataSource, assembly string) (Genome, error) {
  if dataSource == "" {
    dataSource = DefaultUCSCDataSource
  }
  dsn := fmt.Sprintf(dataSource, assembly)
  url := fmt.Sprintf("mysql://%s/chromInfo", assembly)

  /* variables for storing a single database row */
  var i_seqname string
  var i_length  int

  seqnames := []string{}
  lengths  := []int{}

  /* open connection */
  db, err := sql.Open("mysql", dsn)
  if err != nil {
    return Genome{}, &FetchError{URL: url, Err: err}
  }
  defer db.Close()

  if err := db.Ping(); err != nil {
    return Genome{}, &FetchError{URL: url, Err: err}
  }

  /* receive data */
  rows, err := db.Query("SELECT chrom, size FROM chromInfo")
  if err != nil {
    return Genome{}, &FetchError{URL: url, Err: err}
  }
  defer rows.Close()
  for rows.Next() {
    if err := rows.Scan(&i_seqname, &i_length); err != nil {
      return Genome{}, &FetchError{URL: url, Err: err}
    }
    if i_length < 0 {
      return Genome{}, &FetchError{URL: url, Err: fmt.Errorf("chromosome `%s' has negative length", i_seqname)}
    }
    seqnames = append(seqnames, i_seqname)
    lengths  = append(lengths,  i_length)
  }
  if err := rows.Err(); err != nil {
    return Genome{}, &FetchError{URL: url, Err: err}
  }
  return NewGenome(seqnames, lengths), nil
}
