/*Package log implements the logging for the bolt driver

There are 4 logging levels - trace, info, warn and error.  Setting trace
would also set info, warn and error logs.  You can use SetLevel("trace")
to set trace logging, for example.  Output is discarded unless a writer
is installed with SetOutput.
*/
package log
